package service

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/model"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

// UploadFile загружает один файл.
func (s *Service) UploadFile(ctx context.Context, f backend.FilePart) (model.File, backend.Result) {
	if f.Field == "" {
		f.Field = "file"
	}

	res := s.backend.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   "v1/files",
		Files:  []backend.FilePart{f},
		Auth:   true,
		Validate: validation.Rules{
			"file": {validation.Required(f.Name, "validation.required")},
		},
	})
	return decode[model.File](res)
}

// UploadFiles загружает файлы параллельно (не больше uploadParallel одновременно)
// и возвращает их идентификаторы в исходном порядке. Первая ошибка отменяет
// остальные загрузки.
func (s *Service) UploadFiles(ctx context.Context, files []backend.FilePart) ([]int64, backend.Result) {
	ids := make([]int64, len(files))
	if len(files) == 0 {
		return ids, backend.Success(nil)
	}

	var (
		mu     sync.Mutex
		failed backend.Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.uploadParallel)

	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			file, res := s.UploadFile(gctx, f)
			if !res.OK() {
				mu.Lock()
				if failed.Status == "" {
					failed = res
				}
				mu.Unlock()
				return res.Error
			}
			ids[i] = file.ID
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, failed
	}
	return ids, backend.Success(nil)
}

// DownloadFile отдаёт содержимое файла; Result.Data содержит байты, ContentType их тип.
func (s *Service) DownloadFile(ctx context.Context, fileID int64) backend.Result {
	return s.backend.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/files/" + id(fileID) + "/download",
		Auth:   true,
		Validate: validation.Rules{
			"id": {validation.Positive(fileID, "validation.gt")},
		},
	})
}
