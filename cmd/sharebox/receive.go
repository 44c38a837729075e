package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sharebox-go/internal/classifier"
	"sharebox-go/internal/selection"
	"sharebox-go/internal/share"
	"sharebox-go/internal/storage"
)

// parallel downloads per receive
const downloadWorkers = 4

type receiveOptions struct {
	out  string
	save bool
}

func (o *receiveOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "Download files into this directory")
	cmd.Flags().BoolVar(&o.save, "save", false, "Download files to the configured storage (DOWNLOAD_DIR or the GCS bucket)")
}

func newReceiveCmd(a *app) *cobra.Command {
	opts := &receiveOptions{}
	cmd := &cobra.Command{
		Use:   "receive [CODE]",
		Short: "Redeem a 6-digit access code",
		Long: `receive redeems an access code and prints the shared text or the list of files.
Without CODE the code is read from standard input. With --out the files are downloaded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}

			var raw string
			if len(args) == 1 {
				raw = args[0]
			} else {
				var err error
				if raw, err = promptCode(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
					return err
				}
			}

			input := share.ParseAccessCode(raw)
			content, err := share.NewRedeemer(a.client).Redeem(cmd.Context(), input)
			if err != nil {
				return errors.New(share.UserMessage(err))
			}
			return a.deliver(cmd, content, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newOpenCmd(a *app) *cobra.Command {
	opts := &receiveOptions{}
	cmd := &cobra.Command{
		Use:   "open HASH",
		Short: "Open the content behind a share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}

			hash := args[0]
			// a full link is accepted too
			if i := strings.LastIndex(hash, "/"); i >= 0 {
				hash = hash[i+1:]
			}

			content, err := share.NewRedeemer(a.client).RedeemHash(cmd.Context(), hash)
			if err != nil {
				return errors.New(share.UserMessage(err))
			}
			return a.deliver(cmd, content, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func promptCode(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Access code: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading access code: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// deliver prints redeemed content and, when asked, downloads its files.
func (a *app) deliver(cmd *cobra.Command, content *share.RedeemedContent, opts *receiveOptions) error {
	out := cmd.OutOrStdout()

	if content.Kind == share.KindText {
		fmt.Fprintln(out, content.Text)
		return nil
	}

	for _, f := range content.Files {
		c := classifier.Classify(f.Name)
		fmt.Fprintf(out, "%-8s %s\t%s\n", c.Category.Action(), f.Name, f.URL)
	}
	if opts.out == "" && !opts.save {
		return nil
	}

	cfg := a.cfg.Storage
	if opts.out != "" {
		cfg.Provider = "local"
		cfg.LocalPath = opts.out
	}
	sink, err := storage.NewSink(cfg)
	if err != nil {
		return err
	}
	defer sink.Close()

	return downloadAll(cmd.Context(), a.client, sink, content.Files, out)
}

// downloadAll fetches files concurrently. A failed file is aborted so no
// partial download is left behind; the first error is returned.
func downloadAll(ctx context.Context, client *share.Client, sink storage.Sink, files []share.RemoteFile, out io.Writer) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadWorkers)

	saved := make([]string, len(files))
	sizes := make([]int64, len(files))
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			w, err := sink.Create(ctx, f.Name)
			if err != nil {
				return fmt.Errorf("creating %s: %w", f.Name, err)
			}

			n, err := client.Download(ctx, f, w)
			if err != nil {
				if aerr := w.Abort(); aerr != nil {
					log.Error().Err(aerr).Str("file", w.Name()).Msg("error discarding partial download")
				}
				return err
			}
			if err := w.Close(); err != nil {
				return fmt.Errorf("saving %s: %w", f.Name, err)
			}

			saved[i] = sink.Location(w.Name())
			sizes[i] = n
			log.Debug().
				Str("file", f.Name).
				Str("location", saved[i]).
				Int64("bytes", n).
				Msg("file downloaded")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range files {
		fmt.Fprintf(out, "Saved %s (%s)\n", saved[i], selection.FormatSize(sizes[i]))
	}
	return nil
}
