package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kazi-app/ups/internal/domain"
)

// ErrUnknownFormat is returned for formats Encode does not support.
var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists the supported formats.
var Formats = []domain.ExportFormat{domain.FormatJSON, domain.FormatCSV, domain.FormatMarkdown}

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (domain.ExportFormat, error) {
	switch f := domain.ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case domain.FormatJSON, domain.FormatCSV, domain.FormatMarkdown:
		return f, nil
	case "md":
		return domain.FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of a format.
func ContentType(f domain.ExportFormat) string {
	switch f {
	case domain.FormatJSON:
		return "application/json"
	case domain.FormatCSV:
		return "text/csv"
	case domain.FormatMarkdown:
		return "text/markdown"
	default:
		return "application/octet-stream"
	}
}

// Encode renders comments in format.
func Encode(format domain.ExportFormat, comments []domain.Comment) ([]byte, error) {
	switch format {
	case domain.FormatJSON:
		return encodeJSON(comments)
	case domain.FormatCSV:
		return encodeCSV(comments)
	case domain.FormatMarkdown:
		return encodeMarkdown(comments), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func encodeJSON(comments []domain.Comment) ([]byte, error) {
	if comments == nil {
		comments = []domain.Comment{}
	}
	data, err := json.MarshalIndent(comments, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return data, nil
}

var csvHeader = []string{"id", "author", "content", "type", "status", "priority", "assigned_to", "tags", "created_at", "resolved_at"}

func encodeCSV(comments []domain.Comment) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	for _, c := range comments {
		resolved := ""
		if c.ResolvedAt != nil {
			resolved = c.ResolvedAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			c.ID,
			c.AuthorName,
			c.Content,
			string(c.Type),
			string(c.Status),
			string(c.Priority),
			c.AssignedTo,
			strings.Join(c.Tags, ";"),
			c.CreatedAt.UTC().Format(time.RFC3339),
			resolved,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("encode csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeMarkdown(comments []domain.Comment) []byte {
	var b strings.Builder
	b.WriteString("# Comments\n\n")
	if len(comments) == 0 {
		b.WriteString("_No comments._\n")
		return []byte(b.String())
	}

	open := 0
	for _, c := range comments {
		if c.Status == domain.CommentOpen {
			open++
		}
	}
	b.WriteString(strconv.Itoa(len(comments)) + " comments, " + strconv.Itoa(open) + " open.\n")

	for _, c := range comments {
		author := c.AuthorName
		if author == "" {
			author = "anonymous"
		}
		fmt.Fprintf(&b, "\n## %s (%s, %s)\n\n", author, c.Status, c.Priority)
		b.WriteString(c.Content)
		b.WriteString("\n")
		if c.AssignedTo != "" {
			fmt.Fprintf(&b, "\n- Assigned to: %s\n", c.AssignedTo)
		}
		if len(c.Tags) > 0 {
			fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(c.Tags, ", "))
		}
		fmt.Fprintf(&b, "- Created: %s\n", c.CreatedAt.UTC().Format(time.RFC3339))
	}
	return []byte(b.String())
}
