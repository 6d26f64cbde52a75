package legacy

import (
	"context"

	"legacy-importer/core/storage"
)

// Resolution is the outcome of locating a video's assets on the archive.
type Resolution struct {
	SourceID         int64
	PrimaryPath      string
	PrimaryFound     bool
	PrimarySize      int64
	ThumbnailPath    string
	ThumbnailFound   bool
	ThumbnailMissing bool
	// Err is the first storage error met while probing. The asset is then reported missing.
	Err error
}

// ResolveReport aggregates resolutions for a dry run.
type ResolveReport struct {
	Total            int   `json:"total"`
	WithoutPath      int   `json:"without_path"`
	Found            int   `json:"found"`
	Missing          int   `json:"missing"`
	ThumbnailsFound  int   `json:"thumbnails_found"`
	ThumbnailsMissed int   `json:"thumbnails_missed"`
	TotalBytes       int64 `json:"total_bytes"`
	// MissingPaths lists the primary paths that were not found, capped at MaxMissingListed.
	MissingPaths []string `json:"missing_paths"`
}

// MaxMissingListed bounds ResolveReport.MissingPaths.
const MaxMissingListed = 50

// Resolve checks whether the assets of v exist on the archive disk. It never
// copies or modifies anything.
func Resolve(ctx context.Context, archive storage.Disk, v Video) Resolution {
	res := Resolution{SourceID: v.SourceID}
	if v.FilePath == nil {
		return res
	}

	res.PrimaryPath = *v.FilePath
	ok, err := archive.Exists(ctx, res.PrimaryPath)
	if err != nil {
		res.Err = err
		return res
	}
	if ok {
		size, err := archive.Size(ctx, res.PrimaryPath)
		if err != nil {
			res.Err = err
			return res
		}
		res.PrimaryFound = true
		res.PrimarySize = size
	}

	if v.ThumbnailPath != nil {
		res.ThumbnailPath = *v.ThumbnailPath
		found, err := archive.Exists(ctx, res.ThumbnailPath)
		if err != nil && res.Err == nil {
			res.Err = err
		}
		res.ThumbnailFound = found
		res.ThumbnailMissing = !found
	}
	return res
}

// Report resolves every video and aggregates the outcome. It stops early when ctx
// is cancelled and returns what it has so far together with the context error.
func Report(ctx context.Context, archive storage.Disk, videos []Video) (ResolveReport, error) {
	var rep ResolveReport
	for _, v := range videos {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Total++

		res := Resolve(ctx, archive, v)
		switch {
		case res.PrimaryPath == "":
			rep.WithoutPath++
		case res.PrimaryFound:
			rep.Found++
			rep.TotalBytes += res.PrimarySize
		default:
			rep.Missing++
			if len(rep.MissingPaths) < MaxMissingListed {
				rep.MissingPaths = append(rep.MissingPaths, res.PrimaryPath)
			}
		}
		if res.ThumbnailFound {
			rep.ThumbnailsFound++
		} else if res.ThumbnailMissing {
			rep.ThumbnailsMissed++
		}
	}
	return rep, nil
}
