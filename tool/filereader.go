package tool

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileContent is the payload of a successful read_file call. Size is
// the size on disk, which can exceed len(Content) when the read was
// truncated.
type FileContent struct {
	Path      string `json:"path"`
	Content   string `json:"content"`
	Size      int64  `json:"size"`
	Truncated bool   `json:"truncated,omitempty"`
}

// FileReadOptions configures the read_file tool.
type FileReadOptions struct {
	// Root confines reads to a directory when set. Paths are resolved
	// relative to it and may not escape it.
	Root string

	// MaxBytes truncates content beyond this size when positive.
	MaxBytes int64
}

// FileReadTool reads a file from disk. A missing file is a NOT_FOUND
// failure carried in the result, never a crash.
type FileReadTool struct {
	name        string
	description string
	root        string
	maxBytes    int64
}

var _ Tool = (*FileReadTool)(nil)

// NewFileReadTool creates the read_file tool.
func NewFileReadTool(optFns ...func(o *FileReadOptions)) *FileReadTool {
	opts := FileReadOptions{}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &FileReadTool{
		name:        "read_file",
		description: "Reads the content of a file from disk.",
		root:        opts.Root,
		maxBytes:    opts.MaxBytes,
	}
}

// Name returns the tool identifier.
func (t *FileReadTool) Name() string {
	return t.name
}

// Description returns what the tool does.
func (t *FileReadTool) Description() string {
	return t.description
}

// Parameters returns the argument schema.
func (t *FileReadTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path of the file to read",
			},
		},
		"required": []string{"path"},
	}
}

// Call reads the file at the given path.
func (t *FileReadTool) Call(tctx *Context, args map[string]interface{}) (interface{}, error) {
	path, _ := args["path"].(string)
	if strings.TrimSpace(path) == "" {
		return nil, NewToolError(t.name, "path is empty", CodeValidation)
	}

	resolved, err := t.resolve(path)
	if err != nil {
		return nil, NewToolError(t.name, err.Error(), CodeValidation)
	}

	data, err := os.ReadFile(resolved)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, NewToolError(t.name, fmt.Sprintf("file not found: %s", path), CodeNotFound)
	}
	if err != nil {
		return nil, NewToolError(t.name, err.Error(), CodeExecution)
	}

	size := int64(len(data))
	truncated := false
	if t.maxBytes > 0 && size > t.maxBytes {
		data = data[:t.maxBytes]
		truncated = true
	}

	return &FileContent{
		Path:      path,
		Content:   string(data),
		Size:      size,
		Truncated: truncated,
	}, nil
}

// resolve maps the requested path into the configured root, rejecting
// paths that escape it.
func (t *FileReadTool) resolve(path string) (string, error) {
	if t.root == "" {
		return path, nil
	}

	rootAbs, err := filepath.Abs(t.root)
	if err != nil {
		return "", err
	}

	joined, err := filepath.Abs(filepath.Join(rootAbs, path))
	if err != nil {
		return "", err
	}

	if joined != rootAbs && !strings.HasPrefix(joined, rootAbs+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes the configured root: %s", path)
	}

	return joined, nil
}
