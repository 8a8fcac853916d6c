package entities

import "testing"

func TestPermission_String(t *testing.T) {
	tests := []struct {
		name string
		p    Permission
		want string
	}{
		{
			name: "per-action rule",
			p: Permission{
				RoleID:     "admin",
				ResourceID: "doc1",
				Scope:      PerAction{Action: "read"},
				Kind:       KindAllow,
			},
			want: "admin#read@doc1=ALLOW",
		},
		{
			name: "blanket rule",
			p: Permission{
				RoleID:     "guest",
				ResourceID: "doc1",
				Scope:      Blanket{},
				Kind:       KindDenyAll,
			},
			want: "guest#*@doc1=DENY_ALL",
		},
		{
			name: "missing scope",
			p: Permission{
				RoleID:     "guest",
				ResourceID: "doc1",
				Kind:       KindDeny,
			},
			want: "guest#?@doc1=DENY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.String(); got != tt.want {
				t.Errorf("Permission.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPermission_Action(t *testing.T) {
	p := &Permission{Scope: PerAction{Action: "write"}}
	if got := p.Action(); got != "write" {
		t.Errorf("Permission.Action() = %q, want %q", got, "write")
	}

	p = &Permission{Scope: Blanket{}}
	if got := p.Action(); got != "" {
		t.Errorf("Permission.Action() for blanket = %q, want empty", got)
	}
}

func TestPermission_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       Permission
		wantErr bool
	}{
		{
			name:    "valid allow",
			p:       Permission{RoleID: "admin", ResourceID: "doc1", Scope: PerAction{Action: "read"}, Kind: KindAllow},
			wantErr: false,
		},
		{
			name:    "valid deny all",
			p:       Permission{RoleID: "admin", ResourceID: "doc1", Scope: Blanket{}, Kind: KindDenyAll},
			wantErr: false,
		},
		{
			name:    "missing role",
			p:       Permission{ResourceID: "doc1", Scope: PerAction{Action: "read"}, Kind: KindAllow},
			wantErr: true,
		},
		{
			name:    "missing resource",
			p:       Permission{RoleID: "admin", Scope: PerAction{Action: "read"}, Kind: KindAllow},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			p:       Permission{RoleID: "admin", ResourceID: "doc1", Scope: PerAction{Action: "read"}, Kind: "MAYBE"},
			wantErr: true,
		},
		{
			name:    "empty action",
			p:       Permission{RoleID: "admin", ResourceID: "doc1", Scope: PerAction{}, Kind: KindAllow},
			wantErr: true,
		},
		{
			name:    "blanket kind on action scope",
			p:       Permission{RoleID: "admin", ResourceID: "doc1", Scope: PerAction{Action: "read"}, Kind: KindAllowAll},
			wantErr: true,
		},
		{
			name:    "action kind on blanket scope",
			p:       Permission{RoleID: "admin", ResourceID: "doc1", Scope: Blanket{}, Kind: KindDeny},
			wantErr: true,
		},
		{
			name:    "missing scope",
			p:       Permission{RoleID: "admin", ResourceID: "doc1", Kind: KindDeny},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Permission.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
