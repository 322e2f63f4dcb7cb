// Copyright 2026 The GeoCheck Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// APIKeyEnvVar is the environment variable holding the Google Maps API key.
const APIKeyEnvVar = "GOOGLE_MAPS_API_KEY"

// targetDisplayName is the display name of the API key resource looked up
// through Application Default Credentials.
const targetDisplayName = "GeoCheck Geocoding Key"

// ResolveAPIKey finds the Google Maps API key: the environment variable
// first, then a best-effort .env file, then an Application Default
// Credentials lookup against the API Keys service.
func ResolveAPIKey(ctx context.Context, envFile string) (string, error) {
	if key := os.Getenv(APIKeyEnvVar); key != "" {
		return key, nil
	}

	if err := loadEnvFile(envFile); err != nil {
		log.Printf("Ignoring unreadable env file %s: %v", envFile, err)
	}

	if key := os.Getenv(APIKeyEnvVar); key != "" {
		return key, nil
	}

	log.Printf("%s is not set. Attempting to retrieve via ADC...", APIKeyEnvVar)

	key, err := apiKeyFromADC(ctx)
	if err != nil {
		return "", fmt.Errorf("%s is not set and ADC lookup failed: %w", APIKeyEnvVar, err)
	}

	return key, nil
}

// loadEnvFile reads simple KEY=VALUE lines (optionally quoted) into the
// environment. Existing variables are never overridden; a missing file is
// not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if key != "" && os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}

	return scanner.Err()
}

func apiKeyFromADC(ctx context.Context) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	projectID := creds.ProjectID
	if projectID == "" {
		return "", errors.New("no project ID in default credentials")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	req := &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	}

	it := client.ListKeys(ctx, req)

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != targetDisplayName {
			continue
		}

		// ListKeys redacts KeyString; GetKeyString returns the secret.
		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{
			Name: key.Name,
		})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key %q found but its key string is empty", targetDisplayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("no API key named %q in project %s", targetDisplayName, projectID)
}
