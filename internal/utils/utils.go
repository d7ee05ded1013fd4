package utils

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sol-strategies/solana-validator-dashboard/internal/constants"
)

// ResolvePath converts a path that might contain ~ to an absolute path
func ResolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is empty")
	}

	// Handle ~ at the start of the path
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	return absPath, nil
}

// IsValidRPCURL checks the url has an http(s) scheme and a host
func IsValidRPCURL(urlIn string) bool {
	parsedURL, err := url.Parse(urlIn)
	if err != nil {
		return false
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false
	}

	return parsedURL.Host != ""
}

// IsValidURLWithPort checks if the url is a valid url with a port
func IsValidURLWithPort(urlIn string) bool {
	// Add default scheme if none is present
	if !strings.Contains(urlIn, "://") {
		urlIn = "http://" + urlIn
	}

	parsedURL, err := url.Parse(urlIn)
	if err != nil {
		return false
	}

	if parsedURL.Host == "" || parsedURL.Port() == "" {
		return false
	}

	return true
}

// FileExists checks if the file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ValidateCluster validates that the cluster is a valid cluster
func ValidateCluster(cluster string) (err error) {
	_, ok := constants.SolanaClusters[cluster]
	if !ok {
		names := slices.Clone(constants.SolanaClusterNames)
		slices.Sort(names)
		return fmt.Errorf("invalid cluster: %s, must be one of: %s", cluster, strings.Join(names, ", "))
	}
	return nil
}

// SortedKeys returns the keys of a string map in ascending order
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
