package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfeidau/offices/internal/auth"
)

type TokenCmd struct {
	Subject    string        `help:"Subject identifier" required:""`
	TTL        time.Duration `help:"Token lifetime" default:"1h"`
	SigningKey string        `help:"JWT signing key" required:"" env:"JWT_SIGNING_KEY"`
}

func (t *TokenCmd) Run(ctx context.Context) error {
	token, err := auth.IssueToken(t.SigningKey, t.Subject, t.TTL)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}

type KeygenCmd struct{}

// Run prints a new signing key pair. The private half goes to JWT_SIGNING_KEY
// for the token command, the public half to the server's --jwt-public-key.
func (k *KeygenCmd) Run(ctx context.Context) error {
	privPEM, pubPEM, err := auth.GenerateSigningKey()
	if err != nil {
		return err
	}

	fmt.Print(privPEM)
	fmt.Print(pubPEM)
	return nil
}
