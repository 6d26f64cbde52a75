// Package storage provides the file stores the importer reads from and writes to.
//
// Everything is expressed through the Disk interface: slash-separated relative paths,
// existence and size checks, streaming reads and writes. Two implementations exist:
//
//   - LocalDisk: an afero filesystem, OS backed (NewLocalDisk) or in memory
//     (NewFsDisk with afero.NewMemMapFs, used by tests).
//   - ObjectDisk: an S3 compatible bucket through the MinIO Go client.
//
// The legacy archive is always a LocalDisk; the destination is chosen by
// Config.Driver. Copy streams a file from one Disk to another without buffering it.
//
// # Client Interface
//
// Client abstracts the MinIO client so ObjectDisk can be tested with the mock in
// core/storage/mocks.
//
// # Usage
//
//	archive := storage.NewLocalDisk("/mnt/old-site")
//	dest, err := storage.NewDisk(cfg.Storage)
//	n, err := storage.Copy(ctx, archive, "uploads/2019/05/clip.mp4", dest, "videos/clip/video.mp4")
package storage
