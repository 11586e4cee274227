// Package datastoretest implements support code for testing with the Cloud
// Datastore emulator.
package datastoretest

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/datastore"
)

const defaultProjectID = "visitor-counter-test"

// Connect creates a client for the emulator named by DATASTORE_EMULATOR_HOST.
// The test is skipped when no emulator is configured.
func Connect(t *testing.T) *datastore.Client {
	t.Helper()
	if os.Getenv("DATASTORE_EMULATOR_HOST") == "" {
		t.Skip("Missing Datastore emulator host")
	}
	projectID := os.Getenv("DATASTORE_PROJECT_ID")
	if projectID == "" {
		projectID = defaultProjectID
	}

	client, err := datastore.NewClient(context.Background(), projectID)
	if err != nil {
		t.Skipf("Datastore emulator unavailable: %s", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}
