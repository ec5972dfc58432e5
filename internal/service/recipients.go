package service

import (
	"context"
	"net/http"

	"github.com/mmeshcher/parcel-portal/internal/backend"
	"github.com/mmeshcher/parcel-portal/internal/cache"
	"github.com/mmeshcher/parcel-portal/internal/model"
	"github.com/mmeshcher/parcel-portal/internal/validation"
)

func (s *Service) ListRecipients(ctx context.Context) ([]model.Recipient, backend.Result) {
	res := s.cachedGet(ctx, cache.TagRecipients, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/recipients",
		Auth:   true,
	})
	return decode[[]model.Recipient](res)
}

func (s *Service) GetRecipient(ctx context.Context, recipientID int64) (model.Recipient, backend.Result) {
	res := s.backend.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   "v1/recipients/" + id(recipientID),
		Auth:   true,
		Validate: validation.Rules{
			"id": {validation.Positive(recipientID, "validation.gt")},
		},
	})
	return decode[model.Recipient](res)
}

// CreateRecipient загружает обе стороны документа и отправляет заявку на проверку.
func (s *Service) CreateRecipient(ctx context.Context, r model.Recipient, front, back *backend.FilePart) (model.Recipient, backend.Result) {
	// Идентификаторы ещё не загруженных документов подставляются заглушкой,
	// чтобы проверить остальные поля до загрузки файлов.
	draft := r
	if front != nil {
		draft.DocumentFrontID = 1
	}
	if back != nil {
		draft.DocumentBackID = 1
	}
	if errs := validation.Struct(draft); !errs.Empty() {
		return model.Recipient{}, backend.Failure(errs)
	}

	var uploads []backend.FilePart
	if front != nil {
		uploads = append(uploads, *front)
	}
	if back != nil {
		uploads = append(uploads, *back)
	}

	ids, res := s.UploadFiles(ctx, uploads)
	if !res.OK() {
		return model.Recipient{}, res
	}
	if front != nil {
		r.DocumentFrontID, ids = ids[0], ids[1:]
	}
	if back != nil {
		r.DocumentBackID = ids[0]
	}
	r.Status = model.RecipientStatusPending

	res = s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPost,
			Path:   "v1/recipients",
			Body:   r,
			Check:  r,
		},
		tags:     []string{cache.TagRecipients},
		resource: "recipient",
		action:   "create",
	})
	return decode[model.Recipient](res)
}

// ApproveRecipient активирует получателя (администратор).
func (s *Service) ApproveRecipient(ctx context.Context, recipientID int64) backend.Result {
	return s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPost,
			Path:   "v1/recipients/" + id(recipientID) + "/approve",
			Validate: validation.Rules{
				"id": {validation.Positive(recipientID, "validation.gt")},
			},
		},
		tags:       []string{cache.TagRecipients},
		resource:   "recipient",
		resourceID: id(recipientID),
		action:     "approve",
	})
}

type rejectBody struct {
	Comment string `json:"comment"`
}

// RejectRecipient отклоняет заявку с обязательным комментарием.
func (s *Service) RejectRecipient(ctx context.Context, recipientID int64, comment string) backend.Result {
	return s.mutate(ctx, mutation{
		req: backend.Request{
			Method: http.MethodPost,
			Path:   "v1/recipients/" + id(recipientID) + "/reject",
			Body:   rejectBody{Comment: comment},
			Validate: validation.Rules{
				"id":      {validation.Positive(recipientID, "validation.gt")},
				"comment": {validation.Required(comment, "validation.comment"), validation.MaxLen(comment, 500, "validation.max")},
			},
		},
		tags:       []string{cache.TagRecipients},
		resource:   "recipient",
		resourceID: id(recipientID),
		action:     "reject",
	})
}
