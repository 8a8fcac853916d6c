package main

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	cmd := newRootCmd(dialInsecure)
	if err := cmd.Execute(); err != nil {
		hclog.Default().Error("command failed", "error", err)
		os.Exit(1)
	}
}

func dialInsecure(addr string) (grpc.ClientConnInterface, func() error, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return conn, conn.Close, nil
}
