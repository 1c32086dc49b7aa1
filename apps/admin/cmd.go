package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/mwalimu/client"
	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/auth"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	hashSecretFunc   = auth.HashSecret   // mockable
	nowFunc          = time.Now          // mockable

	errEmptySecret = errors.New("secret cannot be empty")
)

type commandLine struct {
	conf   *core.Config
	out    io.Writer
	apiURL string
	token  string
}

func newRootCmd(cli *commandLine) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         cli.conf.AppName + " administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(cli.out)
	root.PersistentFlags().StringVar(&cli.apiURL, "api", defaultAPIURL(cli.conf), "base URL of the API")
	root.PersistentFlags().StringVar(&cli.token, "token", "", "portal token (the admin secret is prompted when empty)")

	root.AddCommand(
		migrateCmd(cli),
		hashSecretCmd(cli),
		loginCmd(cli),
		contentCmd(cli),
		slidesCmd(cli),
	)
	return root
}

func defaultAPIURL(conf *core.Config) string {
	addr := conf.Server.Address
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, args...)
}

// promptSecret reads a secret from the terminal without echoing it.
func (cli *commandLine) promptSecret(label string) (string, error) {
	cli.printf("%s:", label)
	secret, err := readPasswordFunc(int(syscall.Stdin)) // nolint:unconvert
	cli.printf("\n")
	if err != nil {
		return "", errors.Wrap(err, "reading secret")
	}
	if len(secret) == 0 {
		return "", errEmptySecret
	}
	return string(secret), nil
}

func (cli *commandLine) client() *client.Client {
	cl := client.New(cli.apiURL, &http.Client{Timeout: 5 * time.Minute})
	cl.SetToken(cli.token)
	return cl
}

// portalClient returns a client holding a token, logging in first when --token is empty.
func (cli *commandLine) portalClient(cmd *cobra.Command) (*client.Client, error) {
	cl := cli.client()
	if cl.Token() != "" {
		return cl, nil
	}
	secret, err := cli.promptSecret("Admin secret")
	if err != nil {
		return nil, err
	}
	if _, err = cl.Login(cmd.Context(), secret); err != nil {
		return nil, errors.Wrap(err, "logging in")
	}
	return cl, nil
}

func hashSecretCmd(cli *commandLine) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret",
		Short: "Print the bcrypt hash of the admin secret, for ADMIN_PASSWORD_HASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := cli.promptSecret("Enter secret")
			if err != nil {
				return err
			}
			hash, err := hashSecretFunc(secret)
			if err != nil {
				return err
			}
			cli.printf("%s\n", hash)
			return nil
		},
	}
}

func loginCmd(cli *commandLine) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Exchange the admin secret for a portal token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli.token = ""
			cl, err := cli.portalClient(cmd)
			if err != nil {
				return err
			}
			cli.printf("%s\n", cl.Token())
			return nil
		},
	}
}
