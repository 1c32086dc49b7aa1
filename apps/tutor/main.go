package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/trezcool/mwalimu/client"
	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/chat"
)

func main() {
	conf := core.NewConfig()
	logger := log.New(os.Stderr, "TUTOR : ", log.LstdFlags)

	var apiURL string
	root := &cobra.Command{
		Use:          "tutor",
		Short:        "Chat with the " + conf.AppName + " teaching assistant",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cl := client.New(apiURL, nil)
			s := &session{
				conv:    chat.NewConversation(stdLogger{logger}),
				sender:  cl,
				catalog: cl,
				in:      cmd.InOrStdin(),
				out:     cmd.OutOrStdout(),
			}
			return s.run(cmd.Context())
		},
	}
	root.Flags().StringVar(&apiURL, "api", defaultAPIURL(conf.Server.Address), "base URL of the API")

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Printf("error: %s", err)
		os.Exit(1)
	}
}

func defaultAPIURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

// stdLogger keeps transport errors out of the transcript.
type stdLogger struct {
	*log.Logger
}

var _ core.Logger = stdLogger{} // interface compliance check

func (l stdLogger) print(level, msg string, args []interface{}) {
	for _, arg := range args {
		if err, ok := arg.(error); ok {
			msg += ": " + err.Error()
		}
	}
	l.Printf("%s %s", level, msg)
}

func (l stdLogger) Debug(msg string, args ...interface{}) {}
func (l stdLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l stdLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l stdLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }
func (l stdLogger) Fatal(msg string, args ...interface{}) {
	l.print("FATAL", msg, args)
	os.Exit(1)
}
