package settings

import (
	"bytes"
	"context"
	"io"

	"github.com/koustreak/sqlbrowser/internal/errs"
	"github.com/koustreak/sqlbrowser/internal/filestore"
)

const contentType = "application/yaml"

// ObjectStore keeps the settings document as one object in a bucket.
type ObjectStore struct {
	docStore
}

// NewObjectStore returns a store backed by bucket/key on fs. The bucket is
// created on first write if needed.
func NewObjectStore(fs filestore.Store, bucket, key string) *ObjectStore {
	s := &ObjectStore{}
	s.b = &objectBackend{fs: fs, bucket: bucket, key: key}
	return s
}

type objectBackend struct {
	fs          filestore.Store
	bucket, key string
	ensured     bool
}

// read stats the document first so a store that was never written reads as
// empty without opening a download.
func (o *objectBackend) read(ctx context.Context) ([]byte, error) {
	info, err := o.fs.StatObject(ctx, o.bucket, o.key)
	if errs.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if info.Size == 0 {
		return nil, nil
	}

	obj, err := o.fs.GetObject(ctx, o.bucket, o.key)
	if errs.IsNotFound(err) {
		// removed between the stat and the get
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnknown, "failed to read settings object", err)
	}
	return raw, nil
}

func (o *objectBackend) write(ctx context.Context, raw []byte) error {
	if !o.ensured {
		if err := o.fs.EnsureBucket(ctx, o.bucket); err != nil {
			return err
		}
		o.ensured = true
	}
	return o.fs.PutObject(ctx, o.bucket, o.key, bytes.NewReader(raw), int64(len(raw)), contentType)
}
