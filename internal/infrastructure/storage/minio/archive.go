package minio

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/probite-fr/probite/internal/domain/affair"
	"github.com/probite-fr/probite/internal/infrastructure/monitoring/logging"
	"github.com/probite-fr/probite/pkg/errors"
)

var ErrSectionNotFound = errors.New(errors.ErrCodeNotFound, "archived section not found")

const archivedSectionContentType = "text/plain; charset=utf-8"

// maxKeySegment bounds each slugged path segment of an object key.
const maxKeySegment = 80

// ArchivedSection describes one stored snapshot.
type ArchivedSection struct {
	Key        string
	SubjectRef string
	Heading    string
	PageURL    string
	Size       int64
	StoredAt   time.Time
}

// EvidenceArchive stores raw encyclopedia section text keyed by subject.
type EvidenceArchive interface {
	// ArchiveSection stores rawText and returns the object key.  Keys are
	// deterministic, so re-running the pipeline overwrites the previous
	// snapshot of the same section.
	ArchiveSection(ctx context.Context, subjectRef, heading, pageURL, rawText string) (string, error)

	// FetchSection returns the stored text for a key.
	FetchSection(ctx context.Context, key string) ([]byte, error)

	// StatSection returns metadata for a stored section without its body.
	StatSection(ctx context.Context, key string) (*ArchivedSection, error)

	// RemoveSection deletes a stored snapshot.
	RemoveSection(ctx context.Context, key string) error
}

type evidenceArchive struct {
	client *Client
	logger logging.Logger
}

// NewEvidenceArchive builds an archive on top of a connected client.
func NewEvidenceArchive(client *Client, log logging.Logger) EvidenceArchive {
	return &evidenceArchive{client: client, logger: log}
}

// SectionKey derives the deterministic object key for a subject section.
func SectionKey(subjectRef, heading string) string {
	return affair.Slugify(subjectRef, maxKeySegment) + "/" + affair.Slugify(heading, maxKeySegment) + ".txt"
}

func (a *evidenceArchive) ArchiveSection(ctx context.Context, subjectRef, heading, pageURL, rawText string) (string, error) {
	if strings.TrimSpace(subjectRef) == "" || strings.TrimSpace(heading) == "" {
		return "", errors.New(errors.ErrCodeValidation, "subject reference and heading are required")
	}

	key := SectionKey(subjectRef, heading)
	data := []byte(rawText)
	opts := minio.PutObjectOptions{
		ContentType: archivedSectionContentType,
		UserMetadata: map[string]string{
			"subject": subjectRef,
			"heading": heading,
			"pageurl": pageURL,
		},
	}

	if _, err := a.client.API().PutObject(ctx, a.client.Bucket(), key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to archive section")
	}

	a.logger.Debug("section archived",
		logging.String("key", key),
		logging.Int("bytes", len(data)))
	return key, nil
}

func (a *evidenceArchive) FetchSection(ctx context.Context, key string) ([]byte, error) {
	obj, err := a.client.API().GetObject(ctx, a.client.Bucket(), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to fetch archived section")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrSectionNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read archived section")
	}
	return data, nil
}

func (a *evidenceArchive) StatSection(ctx context.Context, key string) (*ArchivedSection, error) {
	info, err := a.client.API().StatObject(ctx, a.client.Bucket(), key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrSectionNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to stat archived section")
	}
	return &ArchivedSection{
		Key:        key,
		SubjectRef: info.UserMetadata["Subject"],
		Heading:    info.UserMetadata["Heading"],
		PageURL:    info.UserMetadata["Pageurl"],
		Size:       info.Size,
		StoredAt:   info.LastModified,
	}, nil
}

func (a *evidenceArchive) RemoveSection(ctx context.Context, key string) error {
	if err := a.client.API().RemoveObject(ctx, a.client.Bucket(), key, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to remove archived section")
	}
	return nil
}
