package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"claim-eval/internal/policy"
	"claim-eval/internal/store"
)

func main() {
	var (
		dbPath   = flag.String("db", filepath.FromSlash("data/claims.db"), "Path to SQLite database")
		filePath = flag.String("file", "", "Policy text file, one clause per line")
		fromURL  = flag.String("url", "", "Fetch the policy text from this URL instead of a file")
		docID    = flag.String("doc", policy.UploadedDocID, "Document id to store the policy under")
		sample   = flag.Bool("sample", false, "Store as the sample policy (overrides -doc)")
		list     = flag.Bool("list", false, "List stored policy documents and exit")
		remove   = flag.Bool("delete", false, "Delete the document named by -doc (or -sample) and exit")
	)
	flag.Parse()

	db, err := store.Open(*dbPath, true)
	if err != nil {
		logrus.Fatalf("open database: %v", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logrus.WithError(cerr).Warn("close database")
		}
	}()

	svc := policy.NewService(db)

	if *list {
		docs, err := svc.Documents()
		if err != nil {
			logrus.Fatalf("list documents: %v", err)
		}
		for _, doc := range docs {
			fmt.Printf("%s\t%d clauses\t%s\t%s\n", doc.DocID, doc.ClauseCount, doc.Source, doc.UpdatedAt.Format(time.RFC3339))
		}
		return
	}

	target := strings.TrimSpace(*docID)
	if *sample {
		target = policy.SampleDocID
	}

	if *remove {
		if err := svc.Delete(target); err != nil {
			logrus.Fatalf("delete policy: %v", err)
		}
		return
	}

	start := time.Now()
	var count int
	switch {
	case strings.TrimSpace(*fromURL) != "":
		count, err = ingestURL(svc, target, strings.TrimSpace(*fromURL))
	case strings.TrimSpace(*filePath) != "":
		count, err = svc.LoadFromFile(target, *filePath)
	default:
		flag.Usage()
		logrus.Fatal("one of -file or -url is required")
	}
	if err != nil {
		logrus.Fatalf("ingest policy: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"doc_id":   target,
		"clauses":  count,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("ingest complete")
}

func ingestURL(svc *policy.Service, docID, rawURL string) (int, error) {
	if rawURL == "" {
		return 0, errors.New("missing url")
	}
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "text/plain")

	client := &http.Client{Timeout: 60 * time.Second}
	logrus.WithField("url", rawURL).Info("downloading policy text")
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("download failed: %s", strings.TrimSpace(string(body)))
	}
	return svc.Load(docID, rawURL, resp.Body)
}
