package repositories

import (
	"testing"

	"github.com/asakaida/rolegate/internal/entities"
)

func TestPermissionFilter_Validate(t *testing.T) {
	tests := []struct {
		name    string
		filter  *PermissionFilter
		wantErr bool
	}{
		{
			name:    "nil filter",
			filter:  nil,
			wantErr: true,
		},
		{
			name: "lookup filter",
			filter: &PermissionFilter{
				RoleID:       "admin",
				ResourceID:   "doc1",
				Action:       "read",
				ActionKinds:  []entities.Kind{entities.KindAllow, entities.KindDeny},
				BlanketKinds: []entities.Kind{entities.KindAllowAll, entities.KindDenyAll},
			},
			wantErr: false,
		},
		{
			name:    "blanket only without action",
			filter:  &PermissionFilter{ResourceID: "doc1", BlanketKinds: []entities.Kind{entities.KindAllowAll}},
			wantErr: false,
		},
		{
			name:    "missing resource",
			filter:  &PermissionFilter{Action: "read", ActionKinds: []entities.Kind{entities.KindAllow}},
			wantErr: true,
		},
		{
			name:    "no kinds",
			filter:  &PermissionFilter{ResourceID: "doc1", Action: "read"},
			wantErr: true,
		},
		{
			name:    "per-action kinds without action",
			filter:  &PermissionFilter{ResourceID: "doc1", ActionKinds: []entities.Kind{entities.KindAllow}},
			wantErr: true,
		},
		{
			name:    "blanket kind in per-action branch",
			filter:  &PermissionFilter{ResourceID: "doc1", Action: "read", ActionKinds: []entities.Kind{entities.KindAllowAll}},
			wantErr: true,
		},
		{
			name:    "per-action kind in blanket branch",
			filter:  &PermissionFilter{ResourceID: "doc1", BlanketKinds: []entities.Kind{entities.KindDeny}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("PermissionFilter.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPermissionFilter_Matches(t *testing.T) {
	filter := &PermissionFilter{
		RoleID:       "admin",
		ResourceID:   "doc1",
		Action:       "read",
		ActionKinds:  []entities.Kind{entities.KindAllow, entities.KindDeny},
		BlanketKinds: []entities.Kind{entities.KindDenyAll},
	}

	tests := []struct {
		name string
		p    *entities.Permission
		want bool
	}{
		{
			name: "matching per-action rule",
			p:    &entities.Permission{RoleID: "admin", ResourceID: "doc1", Scope: entities.PerAction{Action: "read"}, Kind: entities.KindDeny},
			want: true,
		},
		{
			name: "other action",
			p:    &entities.Permission{RoleID: "admin", ResourceID: "doc1", Scope: entities.PerAction{Action: "write"}, Kind: entities.KindAllow},
			want: false,
		},
		{
			name: "matching blanket rule",
			p:    &entities.Permission{RoleID: "admin", ResourceID: "doc1", Scope: entities.Blanket{}, Kind: entities.KindDenyAll},
			want: true,
		},
		{
			name: "blanket kind not requested",
			p:    &entities.Permission{RoleID: "admin", ResourceID: "doc1", Scope: entities.Blanket{}, Kind: entities.KindAllowAll},
			want: false,
		},
		{
			name: "other role",
			p:    &entities.Permission{RoleID: "guest", ResourceID: "doc1", Scope: entities.PerAction{Action: "read"}, Kind: entities.KindAllow},
			want: false,
		},
		{
			name: "other resource",
			p:    &entities.Permission{RoleID: "admin", ResourceID: "doc2", Scope: entities.PerAction{Action: "read"}, Kind: entities.KindAllow},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.Matches(tt.p); got != tt.want {
				t.Errorf("PermissionFilter.Matches() = %v, want %v", got, tt.want)
			}
		})
	}

	anyRole := &PermissionFilter{ResourceID: "doc1", Action: "read", ActionKinds: []entities.Kind{entities.KindAllow}}
	p := &entities.Permission{RoleID: "guest", ResourceID: "doc1", Scope: entities.PerAction{Action: "read"}, Kind: entities.KindAllow}
	if !anyRole.Matches(p) {
		t.Error("filter without role should match any role")
	}
}
