package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/flashmob/go-mailheader"
	"github.com/flashmob/go-mailheader/addr"
	"github.com/flashmob/go-mailheader/config"
	gmlog "github.com/flashmob/go-mailheader/log"
)

var rootCmd = &cobra.Command{
	Use:   "headerdump [file]",
	Short: "dump the structured header table of an .eml-shaped message",
	Long: `headerdump reads the header block of a message (from a file argument, or
stdin when none is given), runs it through the header-parsing core, and
prints the Header Table, recipients, Received chain and headers_hash as
JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: dump,
}

var (
	verbose    bool
	configPath string
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"print out more debug information")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to an engine JSON config file (defaults built in if omitted)")
}

// dumpResult is the JSON shape printed to stdout; it mirrors Task without
// exposing the event.Handler or the raw byte slices callers rarely want on
// a terminal.
type dumpResult struct {
	Headers []headerView `json:"headers"`

	Subject      string   `json:"subject"`
	MessageID    string   `json:"message_id,omitempty"`
	DeliverTo    string   `json:"deliver_to,omitempty"`
	FromMIME     []string `json:"from_mime,omitempty"`
	RcptMIME     []string `json:"rcpt_mime,omitempty"`
	FromEnvelope string   `json:"from_envelope,omitempty"`

	NewlineStyle string        `json:"newline_style"`
	HeadersHash  string        `json:"headers_hash"`
	Flags        []string      `json:"flags,omitempty"`
	Received     []receivedHop `json:"received"`
}

type headerView struct {
	Order   int    `json:"order"`
	Name    string `json:"name"`
	Decoded string `json:"decoded"`
}

type receivedHop struct {
	Type         string `json:"type"`
	FromHostname string `json:"from_hostname,omitempty"`
	FromIP       string `json:"from_ip,omitempty"`
	RealHostname string `json:"real_hostname,omitempty"`
	RealIP       string `json:"real_ip,omitempty"`
	ByHostname   string `json:"by_hostname,omitempty"`
	ForMbox      string `json:"for_mbox,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

func dump(cmd *cobra.Command, args []string) error {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	var in io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("could not open %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
	}

	buf, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("could not read input: %w", err)
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		cfg, err = config.ReadConfig(configPath)
		if err != nil {
			return fmt.Errorf("could not load config: %w", err)
		}
	}

	dest := gmlog.OutputStderr.String()
	if !verbose {
		dest = gmlog.OutputOff.String()
	}
	logger, err := gmlog.GetLogger(dest)
	if err != nil {
		return fmt.Errorf("could not create logger: %w", err)
	}
	if verbose {
		logger.SetLevel(logrus.DebugLevel.String())
	}

	task := mailheader.ProcessHeaders(buf, cfg, logger)
	out := render(task)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func render(task *mailheader.Task) dumpResult {
	out := dumpResult{
		Subject:      task.Subject,
		MessageID:    task.MessageID,
		DeliverTo:    task.DeliverTo,
		NewlineStyle: task.NlinesType.String(),
		HeadersHash:  task.HeadersHash,
	}
	for _, h := range task.Header.All() {
		out.Headers = append(out.Headers, headerView{Order: h.Order, Name: h.Name, Decoded: h.Decoded})
	}
	for _, a := range task.FromMIME {
		out.FromMIME = append(out.FromMIME, formatAddress(a))
	}
	for _, a := range task.RcptMIME {
		out.RcptMIME = append(out.RcptMIME, formatAddress(a))
	}
	if task.FromEnvelope != nil {
		out.FromEnvelope = formatAddress(*task.FromEnvelope)
	}
	if task.Flags.Has(mailheader.BrokenHeaders) {
		out.Flags = append(out.Flags, "broken_headers")
	}
	if task.Flags.Has(mailheader.BadUnicode) {
		out.Flags = append(out.Flags, "bad_unicode")
	}
	for _, rh := range task.Received {
		out.Received = append(out.Received, receivedHop{
			Type:         rh.Type.String(),
			FromHostname: rh.FromHostname,
			FromIP:       rh.FromIP,
			RealHostname: rh.RealHostname,
			RealIP:       rh.RealIP,
			ByHostname:   rh.ByHostname,
			ForMbox:      rh.ForMbox,
			Timestamp:    rh.Timestamp,
		})
	}
	return out
}

// formatAddress renders an Address the way a terminal reader expects to see
// it: "local@domain", "Display Name <local@domain>" when a display name is
// set, "local@[ip]" for an IP address literal, or "<>" for a null path.
func formatAddress(a addr.Address) string {
	if a.NullPath {
		return "<>"
	}
	if a.IP != nil {
		return fmt.Sprintf("%s@[%s]", a.LocalPart, a.IP)
	}
	if a.DisplayName != "" {
		return fmt.Sprintf("%s <%s@%s>", a.DisplayName, a.LocalPart, a.Domain)
	}
	return fmt.Sprintf("%s@%s", a.LocalPart, a.Domain)
}
