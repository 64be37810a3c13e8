// Command snapshot manages the catalog snapshot in object storage.
// Operators use it to publish a new courses file, verify what the
// server would load, or remove the snapshot so the server falls back
// to its local sources.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/catalog"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/objstore"
	"github.com/joho/godotenv"
)

func main() {
	publish := flag.String("publish", "", "path of a catalog JSON file to validate, compress, and upload")
	verify := flag.Bool("verify", false, "download the stored snapshot and validate its records")
	remove := flag.Bool("delete", false, "delete the stored snapshot")
	key := flag.String("key", "", "object key (default CATALOG_R2_KEY)")
	flag.Parse()

	// Same optional .env convention as the server.
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := objstore.New(ctx, objstore.Config{
		AccountID:   os.Getenv("CATALOG_R2_ACCOUNT_ID"),
		AccessKeyID: os.Getenv("CATALOG_R2_ACCESS_KEY_ID"),
		SecretKey:   os.Getenv("CATALOG_R2_SECRET_ACCESS_KEY"),
		BucketName:  os.Getenv("CATALOG_R2_BUCKET"),
	})
	if err != nil {
		fatal("object store: %v", err)
	}

	objectKey := *key
	if objectKey == "" {
		objectKey = os.Getenv("CATALOG_R2_KEY")
	}
	if objectKey == "" {
		objectKey = "catalog/courses.json.zst"
	}

	switch {
	case *publish != "":
		publishSnapshot(ctx, client, objectKey, *publish)
	case *verify:
		verifySnapshot(ctx, client, objectKey)
	case *remove:
		deleteSnapshot(ctx, client, objectKey)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// publishSnapshot validates the local file before anything touches the
// bucket; a snapshot with zero usable records would brick every reload.
func publishSnapshot(ctx context.Context, client *objstore.Client, key, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal("read %s: %v", path, err)
	}

	records, skipped := catalog.Parse(data)
	for _, serr := range skipped {
		fmt.Fprintf(os.Stderr, "warning: %v\n", serr)
	}
	if len(records) == 0 {
		fatal("%s contains no usable records, refusing to publish", path)
	}

	etag, err := client.UploadCompressed(ctx, key, data, "application/json")
	if err != nil {
		fatal("upload: %v", err)
	}
	fmt.Printf("published %d records to %s (etag %s)\n", len(records), key, etag)
}

// verifySnapshot checks the stored object the same way the server's
// loader will read it.
func verifySnapshot(ctx context.Context, client *objstore.Client, key string) {
	etag, err := client.HeadObject(ctx, key)
	if errors.Is(err, objstore.ErrNotFound) {
		fatal("no snapshot at %s", key)
	}
	if err != nil {
		fatal("head: %v", err)
	}

	data, _, err := client.DownloadDecompressed(ctx, key)
	if err != nil {
		fatal("download: %v", err)
	}
	records, skipped := catalog.Parse(data)
	for _, serr := range skipped {
		fmt.Fprintf(os.Stderr, "warning: %v\n", serr)
	}
	if len(records) == 0 {
		fatal("snapshot at %s has no usable records", key)
	}
	fmt.Printf("snapshot %s ok: %d records (etag %s)\n", key, len(records), etag)
}

func deleteSnapshot(ctx context.Context, client *objstore.Client, key string) {
	if err := client.DeleteObject(ctx, key); err != nil {
		fatal("delete: %v", err)
	}
	fmt.Printf("deleted %s\n", key)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
