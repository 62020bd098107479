package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sagarc03/folio"
)

// Formatter renders command results.
type Formatter interface {
	FormatUpload(w io.Writer, results []UploadResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatList(w io.Writer, result *ListResult) error
	FormatPhoto(w io.Writer, photo *folio.Photo) error
	FormatSession(w io.Writer, info *SessionInfo) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter writes aligned text.
type HumanFormatter struct {
	Quiet bool
}

func (f *HumanFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.LocalPath, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Uploaded: %s (%s)\n", r.LocalPath, formatSize(r.Size))
			_, _ = fmt.Fprintf(w, "  ID:  %s\n", r.Photo.ID)
			_, _ = fmt.Fprintf(w, "  URL: %s\n", r.Photo.ImageURL)
		}
	}
	return nil
}

func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.ID, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.ID)
		}
	}
	return nil
}

func (f *HumanFormatter) FormatList(w io.Writer, result *ListResult) error {
	if len(result.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No photos found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tCATEGORY\tFEATURED\tORDER\tTITLE\tCREATED")
	for i := range result.Items {
		p := &result.Items[i]
		featured := ""
		if p.IsFeatured {
			featured = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			p.ID,
			p.Category,
			featured,
			p.DisplayOrder,
			truncate(p.Title, 40),
			p.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !f.Quiet {
		_, _ = fmt.Fprintf(w, "\n%d photo(s)\n", len(result.Items))
	}
	return nil
}

func (f *HumanFormatter) FormatPhoto(w io.Writer, p *folio.Photo) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, p.ID)
		return nil
	}
	_, _ = fmt.Fprintf(w, "ID:       %s\n", p.ID)
	_, _ = fmt.Fprintf(w, "Title:    %s\n", p.Title)
	_, _ = fmt.Fprintf(w, "Category: %s\n", p.Category)
	_, _ = fmt.Fprintf(w, "Featured: %t\n", p.IsFeatured)
	_, _ = fmt.Fprintf(w, "Order:    %d\n", p.DisplayOrder)
	if len(p.Tags) > 0 {
		_, _ = fmt.Fprintf(w, "Tags:     %s\n", strings.Join(p.Tags, ", "))
	}
	_, _ = fmt.Fprintf(w, "Image:    %s\n", p.ImageURL)
	return nil
}

func (f *HumanFormatter) FormatSession(w io.Writer, info *SessionInfo) error {
	if info.Identity == "" {
		_, _ = fmt.Fprintf(w, "Level: %s\n", info.Level)
		return nil
	}
	_, _ = fmt.Fprintf(w, "Identity: %s\nLevel:    %s\n", info.Identity, info.Level)
	return nil
}

func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  NAME\tSERVER\tTOKEN")
	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s %s\t%s\t%s\n", marker, truncate(p.Name, 20), truncate(p.Server, 50), maskSecret(p.Token, showSecrets))
	}
	return tw.Flush()
}

func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:   %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Server: %s\n", profile.Server)
	_, _ = fmt.Fprintf(w, "Token:  %s\n", maskSecret(profile.Token, showSecrets))
	return nil
}

// JSONFormatter writes indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatUpload(w io.Writer, results []UploadResult) error {
	type jsonResult struct {
		LocalPath string       `json:"local_path"`
		Size      int64        `json:"size_bytes"`
		Photo     *folio.Photo `json:"photo,omitempty"`
		Error     string       `json:"error,omitempty"`
	}

	output := make([]jsonResult, len(results))
	for i := range results {
		r := &results[i]
		jr := jsonResult{LocalPath: r.LocalPath, Size: r.Size}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		} else {
			jr.Photo = &r.Photo
		}
		output[i] = jr
	}

	return writeJSON(w, output)
}

func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	type jsonResult struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i, r := range results {
		jr := jsonResult{ID: r.ID.String(), Deleted: r.Deleted}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

func (f *JSONFormatter) FormatList(w io.Writer, result *ListResult) error {
	if result.Items == nil {
		result = &ListResult{Items: []folio.Photo{}}
	}
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatPhoto(w io.Writer, photo *folio.Photo) error {
	return writeJSON(w, photo)
}

func (f *JSONFormatter) FormatSession(w io.Writer, info *SessionInfo) error {
	return writeJSON(w, info)
}

func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	return writeJSON(w, struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}

func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name    string `json:"name"`
		Server  string `json:"server"`
		Token   string `json:"token"`
		Default bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		output.Profiles[i] = jsonProfile{
			Name:    p.Name,
			Server:  p.Server,
			Token:   maskSecret(p.Token, showSecrets),
			Default: p.Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	return writeJSON(w, struct {
		Name    string `json:"name"`
		Server  string `json:"server"`
		Token   string `json:"token"`
		Default bool   `json:"default"`
	}{
		Name:    profile.Name,
		Server:  profile.Server,
		Token:   maskSecret(profile.Token, showSecrets),
		Default: isDefault,
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
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

// maskSecret shows the first and last four characters of a secret. Tokens
// shorter than nine characters are fully masked.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
