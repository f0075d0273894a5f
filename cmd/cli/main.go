package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/linkcheck/internal/domain"
)

var (
	flagAPI     string
	flagFile    string
	flagExport  string
	flagTimeout time.Duration
)

func main() {
	root := &cobra.Command{
		Use:           "linkcheck [url...]",
		Short:         "Check URLs against a running linkcheck API",
		Long:          "Reads URLs from arguments, --file, or stdin (one per line), sends them to /check_urls and prints the report.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	api := os.Getenv("API_BASE")
	if api == "" {
		api = "http://localhost:8080"
	}
	root.Flags().StringVar(&flagAPI, "api", api, "linkcheck API base URL")
	root.Flags().StringVarP(&flagFile, "file", "f", "", "read URLs from this file")
	root.Flags().StringVarP(&flagExport, "export", "o", "", "also save the colored .xlsx report to this path")
	root.Flags().DurationVar(&flagTimeout, "timeout", 5*time.Minute, "overall request timeout")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	urls, err := collectURLs(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs given")
	}

	client := &http.Client{Timeout: flagTimeout}
	form := url.Values{"urls": {strings.Join(urls, "\n")}}
	resp, err := client.PostForm(strings.TrimRight(flagAPI, "/")+"/check_urls", form)
	if err != nil {
		return fmt.Errorf("contacting API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	var results []domain.CheckResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return fmt.Errorf("decode results: %w", err)
	}
	printReport(cmd.OutOrStdout(), results)

	if flagExport != "" {
		if err := export(client, results, flagExport); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "saved", flagExport)
	}
	return nil
}

func collectURLs(stdin io.Reader, args []string) ([]string, error) {
	var src io.Reader
	switch {
	case len(args) > 0:
		return args, nil
	case flagFile != "":
		f, err := os.Open(flagFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		src = f
	default:
		src = stdin
	}

	var urls []string
	sc := bufio.NewScanner(src)
	for sc.Scan() {
		if u := strings.TrimSpace(sc.Text()); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, sc.Err()
}

func printReport(w io.Writer, results []domain.CheckResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OK\tURL\tSTATUS\tTIME\tSERVER")
	working := 0
	for _, r := range results {
		mark := "✖"
		if r.Working {
			mark = "✔"
			working++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", mark, r.URL, r.Status, r.ResponseTime, r.Server)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d/%d working\n", working, len(results))
}

func export(client *http.Client, results []domain.CheckResult, path string) error {
	req := domain.ExportRequest{
		Headers: []string{"URL", "Durum", "Yanıt Süresi", "İçerik Tipi", "Sunucu", "İçerik"},
	}
	for _, r := range results {
		working := r.Working
		req.Rows = append(req.Rows, []domain.ExportCell{
			{Text: r.URL, Working: &working},
			{Text: r.Status, Working: &working},
			{Text: r.ResponseTime},
			{Text: r.ContentType},
			{Text: r.Server},
			{Text: r.Content},
		})
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	resp, err := client.Post(strings.TrimRight(flagAPI, "/")+"/export_excel", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("contacting API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func apiError(resp *http.Response) error {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
		return fmt.Errorf("API returned %s: %s", resp.Status, e.Error)
	}
	return fmt.Errorf("API returned status: %s", resp.Status)
}
