package env

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadDotEnv parses a .env file and returns key-value pairs.
// Supports: KEY=value, export KEY=value, KEY="quoted value" with \n \t \r \\ \"
// escapes, KEY='single quoted' taken literally, triple-quoted multi-line
// values (""" or ''') and # comments. Unquoted and double-quoted values may
// reference earlier keys or the OS environment with ${VAR}.
// Note: This does NOT export to OS environment. Use LoadAndExportDotEnv if you
// need ${VAR} syntax to work in config files loaded after the .env file.
func LoadDotEnv(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open env file: %w", err)
	}
	defer file.Close()

	return ParseDotEnv(file)
}

// ParseDotEnv is LoadDotEnv for an already open reader.
func ParseDotEnv(r io.Reader) (map[string]string, error) {
	result := make(map[string]string)
	lookup := func(name string) (string, bool) {
		if v, ok := result[name]; ok {
			return v, true
		}
		return os.LookupEnv(name)
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		// Find the first = sign
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue // Skip lines without =
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		// Skip if key is empty
		if key == "" {
			continue
		}

		if quote := multilineQuote(value); quote != "" {
			start := lineNo
			body, err := readMultiline(scanner, value[len(quote):], quote, &lineNo)
			if err != nil {
				return nil, fmt.Errorf("line %d: key %s: %w", start, key, err)
			}
			if quote == `"""` {
				body = expandRefs(unescape(body), lookup)
			}
			result[key] = body
			continue
		}

		// Handle quoted values
		switch {
		case len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'':
			value = value[1 : len(value)-1]
		case len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"':
			value = expandRefs(unescape(value[1:len(value)-1]), lookup)
		default:
			value = expandRefs(value, lookup)
		}

		result[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading env file: %w", err)
	}

	return result, nil
}

func multilineQuote(value string) string {
	for _, quote := range []string{`"""`, `'''`} {
		if strings.HasPrefix(value, quote) {
			return quote
		}
	}
	return ""
}

// readMultiline collects lines until the closing quote. A value that opens
// with a bare quote on its own line does not start with a newline.
func readMultiline(scanner *bufio.Scanner, first, quote string, lineNo *int) (string, error) {
	if i := strings.Index(first, quote); i >= 0 {
		return first[:i], nil
	}

	lines := []string{first}
	for scanner.Scan() {
		*lineNo++
		text := scanner.Text()
		if i := strings.Index(text, quote); i >= 0 {
			lines = append(lines, text[:i])
			body := strings.Join(lines, "\n")
			return strings.TrimPrefix(body, "\n"), nil
		}
		lines = append(lines, text)
	}
	return "", fmt.Errorf("unterminated %s value", quote)
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"', '$':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// LoadAndExportDotEnv parses a .env file, returns key-value pairs,
// and exports them to the OS environment for ${VAR} resolution.
// Variables are only exported if not already set in the OS environment.
func LoadAndExportDotEnv(path string) (map[string]string, error) {
	vars, err := LoadDotEnv(path)
	if err != nil {
		return nil, err
	}

	// Export to OS environment (only if not already set)
	for k, v := range vars {
		if os.Getenv(k) == "" {
			_ = os.Setenv(k, v) // Error ignored: only fails for invalid key names
		}
	}

	return vars, nil
}
