package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Formatter formats results for output.
type Formatter interface {
	FormatSign(w io.Writer, results []SignResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatIssuances(w io.Writer, result *IssuanceList) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatSign formats sign results as human-readable text.
// In quiet mode only the URLs are printed, one per line.
func (f *HumanFormatter) FormatSign(w io.Writer, results []SignResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s/%s - %v\n", r.Bucket, r.Object, r.Err)
			continue
		}
		if f.Quiet {
			_, _ = fmt.Fprintln(w, r.URL)
			continue
		}
		_, _ = fmt.Fprintf(w, "Signed: %s/%s (expires %s)\n", r.Bucket, r.Object, r.ExpiresAt.Local().Format(time.DateTime))
		_, _ = fmt.Fprintf(w, "  %s\n", r.URL)
	}
	return nil
}

// FormatDownload formats download result as human-readable text.
func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if !f.Quiet {
		if result.LocalPath == "-" {
			_, _ = fmt.Fprintf(w, "Downloaded: %s/%s (%s)\n", result.Bucket, result.Object, formatSize(result.Size))
		} else {
			_, _ = fmt.Fprintf(w, "Downloaded: %s/%s -> %s (%s)\n", result.Bucket, result.Object, result.LocalPath, formatSize(result.Size))
		}
	}
	return nil
}

// FormatIssuances formats ledger entries as human-readable text.
func (f *HumanFormatter) FormatIssuances(w io.Writer, result *IssuanceList) error {
	if len(result.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No issuances found")
		return nil
	}

	// Calculate column widths
	maxRefLen := 6 // "OBJECT"
	for i := range result.Items {
		if l := len(result.Items[i].Bucket) + 1 + len(result.Items[i].Object); l > maxRefLen {
			maxRefLen = l
		}
	}
	if maxRefLen > 60 {
		maxRefLen = 60
	}

	// Print header
	_, _ = fmt.Fprintf(w, "%-19s  %-19s  %-*s  %s\n", "ISSUED", "EXPIRES", maxRefLen, "OBJECT", "REQUEST ID")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n", strings.Repeat("-", 19), strings.Repeat("-", 19), strings.Repeat("-", maxRefLen), strings.Repeat("-", 10))

	// Print items
	for i := range result.Items {
		item := &result.Items[i]
		ref := item.Bucket + "/" + item.Object
		if len(ref) > maxRefLen {
			ref = ref[:maxRefLen-3] + "..."
		}
		_, _ = fmt.Fprintf(w, "%-19s  %-19s  %-*s  %s\n",
			item.IssuedAt.Local().Format(time.DateTime),
			item.ExpiresAt.Local().Format(time.DateTime),
			maxRefLen,
			ref,
			item.RequestID,
		)
	}

	_, _ = fmt.Fprintf(w, "\n%d issuance(s)\n", len(result.Items))

	if result.NextCursor != "" {
		_, _ = fmt.Fprintf(w, "Next page: use --cursor %q\n", result.NextCursor)
	}

	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	// Calculate column widths
	maxNameLen := 4     // "NAME"
	maxEndpointLen := 8 // "ENDPOINT"
	for i := range profiles {
		if len(profiles[i].Name) > maxNameLen {
			maxNameLen = len(profiles[i].Name)
		}
		if len(profiles[i].Endpoint) > maxEndpointLen {
			maxEndpointLen = len(profiles[i].Endpoint)
		}
	}
	if maxNameLen > 20 {
		maxNameLen = 20
	}
	if maxEndpointLen > 50 {
		maxEndpointLen = 50
	}

	// Print header
	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %s\n", maxNameLen, "NAME", maxEndpointLen, "ENDPOINT", "BUCKET")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxEndpointLen), strings.Repeat("-", 20))

	// Print profiles
	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		endpoint := p.Endpoint
		if len(endpoint) > maxEndpointLen {
			endpoint = endpoint[:maxEndpointLen-3] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %s\n", marker, maxNameLen, name, maxEndpointLen, endpoint, orNotSet(p.Bucket))
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint: %s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(w, "Bucket:   %s\n", orNotSet(profile.Bucket))
	if profile.Expires > 0 {
		_, _ = fmt.Fprintf(w, "Expires:  %ds\n", profile.Expires)
	} else {
		_, _ = fmt.Fprintln(w, "Expires:  (server default)")
	}
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatSign formats sign results as JSON.
func (f *JSONFormatter) FormatSign(w io.Writer, results []SignResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		Bucket    string `json:"bucket"`
		Object    string `json:"object"`
		URL       string `json:"url,omitempty"`
		ExpiresAt string `json:"expires_at,omitempty"`
		Method    string `json:"method,omitempty"`
		Error     string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i := range results {
		r := &results[i]
		jr := jsonResult{
			Bucket: r.Bucket,
			Object: r.Object,
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			jr.URL = r.URL
			jr.ExpiresAt = r.ExpiresAt.Format(time.RFC3339)
			jr.Method = r.Method
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatDownload formats download result as JSON.
func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

// FormatIssuances formats ledger entries as JSON.
func (f *JSONFormatter) FormatIssuances(w io.Writer, result *IssuanceList) error {
	return writeJSON(w, result)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	output := struct {
		Profiles []Profile `json:"profiles"`
	}{
		Profiles: make([]Profile, len(profiles)),
	}

	for i := range profiles {
		p := profiles[i]
		p.Default = p.Name == defaultName
		output.Profiles[i] = p
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	profile.Default = isDefault
	return writeJSON(w, profile)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes < 0:
		return "unknown size"
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
