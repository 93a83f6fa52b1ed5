package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeS3 struct {
	objects map[string][]byte
	puts    []*s3.PutObjectInput
	getErr  error
	pages   []*s3.ListObjectsV2Output
	lists   []*s3.ListObjectsV2Input
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	_ = ctx
	_ = optFns
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	_ = ctx
	_ = optFns
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)] = data
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	_ = ctx
	_ = optFns
	idx := len(f.lists)
	f.lists = append(f.lists, params)
	if idx >= len(f.pages) {
		return &s3.ListObjectsV2Output{}, nil
	}
	return f.pages[idx], nil
}

func TestStoreOpenParsesURI(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{"docs/output/job_metadata.json": []byte(`{"ok":true}`)}}
	store := New(client, "")

	body, err := store.Open(context.Background(), "s3://docs/output/job_metadata.json")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer body.Close()
	data, _ := io.ReadAll(body)
	if string(data) != `{"ok":true}` {
		t.Fatalf("unexpected body %q", data)
	}
}

func TestStoreOpenWrapsClientError(t *testing.T) {
	store := New(&fakeS3{getErr: errors.New("AccessDenied")}, "")

	_, err := store.Open(context.Background(), "s3://docs/a.json")
	if err == nil || !strings.Contains(err.Error(), "bucket=docs key=a.json") {
		t.Fatalf("expected wrapped error with location, got %v", err)
	}
}

func TestStorePutAppliesEncryption(t *testing.T) {
	tests := []struct {
		name   string
		kmsKey string
		want   s3types.ServerSideEncryption
	}{
		{name: "aes256 default", want: s3types.ServerSideEncryptionAes256},
		{name: "kms key", kmsKey: "alias/docs", want: s3types.ServerSideEncryptionAwsKms},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeS3{}
			store := New(client, tt.kmsKey)

			n, err := store.Put(context.Background(), "s3://docs/results/a.xlsx", "application/octet-stream", strings.NewReader("hello"))
			if err != nil {
				t.Fatalf("Put: %v", err)
			}
			if n != 5 {
				t.Fatalf("Put size = %d, want 5", n)
			}
			if len(client.puts) != 1 || client.puts[0].ServerSideEncryption != tt.want {
				t.Fatalf("unexpected put input: %+v", client.puts)
			}
		})
	}
}

func TestStorePutRejectsBucketOnlyURI(t *testing.T) {
	store := New(&fakeS3{}, "")
	if _, err := store.Put(context.Background(), "s3://docs", "text/plain", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestStoreListFollowsContinuation(t *testing.T) {
	client := &fakeS3{pages: []*s3.ListObjectsV2Output{
		{
			Contents:              []s3types.Object{{Key: aws.String("reports/a.pdf")}, {Key: aws.String("reports/")}},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("next"),
		},
		{
			Contents: []s3types.Object{{Key: aws.String("reports/b.pdf")}},
		},
	}}
	store := New(client, "")

	got, err := store.List(context.Background(), "s3://docs/reports/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0] != "s3://docs/reports/a.pdf" || got[1] != "s3://docs/reports/b.pdf" {
		t.Fatalf("unexpected listing %v", got)
	}
	if len(client.lists) != 2 || aws.ToString(client.lists[1].ContinuationToken) != "next" {
		t.Fatalf("continuation token not forwarded: %+v", client.lists)
	}
	if aws.ToString(client.lists[0].Prefix) != "reports/" {
		t.Fatalf("prefix = %q", aws.ToString(client.lists[0].Prefix))
	}
}
