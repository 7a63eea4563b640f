package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of *s3.Client used by S3Collection.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Collection implements Collection backed by S3, one object per document at
// <prefix>/<escaped id>.json holding {"count": n}.
type S3Collection struct {
	bucket string
	prefix string
	s3     S3API
}

func NewS3Collection(s3Client S3API, bucket, prefix string) *S3Collection {
	return &S3Collection{
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		s3:     s3Client,
	}
}

func (s *S3Collection) key(id string) string {
	return s.prefix + "/" + url.PathEscape(id) + ".json"
}

func (s *S3Collection) idFromKey(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, s.prefix+"/")
	if !ok {
		return "", false
	}
	rest, ok = strings.CutSuffix(rest, ".json")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	id, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return id, true
}

func (s *S3Collection) Get(ctx context.Context, id string) (Document, bool, error) {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		if isNotFound(err) {
			return Document{}, false, nil
		}
		return Document{}, false, fmt.Errorf("failed to get document %q from S3: %w", id, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, false, fmt.Errorf("failed to read document %q from S3: %w", id, err)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return Document{}, false, fmt.Errorf("failed to decode document %q: %w", id, err)
	}
	doc.ID = id
	return doc, true, nil
}

func (s *S3Collection) Set(ctx context.Context, doc Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(doc.ID)),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put document %q to S3: %w", doc.ID, err)
	}
	return nil
}

func (s *S3Collection) Delete(ctx context.Context, id string) error {
	_, err := s.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete document %q from S3: %w", id, err)
	}
	return nil
}

func (s *S3Collection) List(ctx context.Context) ([]Document, error) {
	var ids []string
	p := s3.NewListObjectsV2Paginator(s.s3, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix + "/"),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list collection in S3: %w", err)
		}
		for _, obj := range page.Contents {
			if id, ok := s.idFromKey(aws.ToString(obj.Key)); ok {
				ids = append(ids, id)
			}
		}
	}

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		doc, ok, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		// Deleted between list and get.
		if !ok {
			continue
		}
		docs = append(docs, doc)
	}
	sortDocuments(docs)
	return docs, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	return errors.As(err, &nf)
}
