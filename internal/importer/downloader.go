package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/mrlokans/cdm-migrate/internal/contentdm"
	"github.com/mrlokans/cdm-migrate/internal/utils"
)

// FileSource is the part of the CONTENTdm client the downloader needs.
type FileSource interface {
	GetFile(ctx context.Context, alias, key, filename string) (io.ReadCloser, error)
	FileURL(alias, key, filename string) string
}

// Result is the outcome of one download.
type Result int

const (
	Downloaded Result = iota
	AlreadyPresent
	NotFound
	Failed
)

func (r Result) String() string {
	switch r {
	case Downloaded:
		return "downloaded"
	case AlreadyPresent:
		return "local"
	case NotFound:
		return "not found"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// Downloader fetches files of one collection into record directories.
type Downloader struct {
	source FileSource
	alias  string
}

func NewDownloader(source FileSource, alias string) *Downloader {
	return &Downloader{source: source, alias: alias}
}

// Download stores the file key/name as dir/name. An existing target is
// left alone without a request. The body is written verbatim through a
// temp file so an interrupted download leaves no partial target.
func (d *Downloader) Download(ctx context.Context, key, dir, name string) (Result, error) {
	target := filepath.Join(dir, name)
	if utils.FileExists(target) {
		return AlreadyPresent, nil
	}

	body, err := d.source.GetFile(ctx, d.alias, key, name)
	if errors.Is(err, contentdm.ErrItemNotFound) {
		return NotFound, err
	}
	if err != nil {
		return Failed, err
	}
	defer body.Close()

	err = utils.WriteFileAtomic(target, func(w io.Writer) error {
		_, err := io.Copy(w, body)
		return err
	})
	if err != nil {
		if contentdm.IsTimeout(err) && !errors.Is(err, contentdm.ErrTimeout) {
			err = fmt.Errorf("%w: %v", contentdm.ErrTimeout, err)
		}
		return Failed, fmt.Errorf("write %s: %w", name, err)
	}
	return Downloaded, nil
}
