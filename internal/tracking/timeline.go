// Package tracking отбирает события отслеживания, которые показываются покупателю.
package tracking

import (
	"slices"

	"github.com/mmeshcher/parcel-portal/internal/model"
)

// Style определяет визуальное оформление события.
type Style string

const (
	StyleInfo    Style = "info"
	StyleSuccess Style = "success"
)

// Entry описывает событие, прошедшее фильтр, со стилем отображения.
type Entry struct {
	model.TrackingActivity
	Style Style `json:"style"`
}

// Visible сообщает, что у события есть хотя бы один код вне внутреннего
// набора. Событие без кодов невидимо.
func Visible(a model.TrackingActivity) bool {
	for _, code := range a.Status {
		if !IsSuppressed(code) {
			return true
		}
	}
	return false
}

// StyleOf возвращает success для событий с кодом оплаты при вручении.
func StyleOf(a model.TrackingActivity) Style {
	if slices.Contains(a.Status, PaymentCollectedCode) {
		return StyleSuccess
	}
	return StyleInfo
}

// Timeline отбирает видимые события, сохраняя исходный порядок и содержимое.
func Timeline(activities []model.TrackingActivity) []Entry {
	out := make([]Entry, 0, len(activities))
	for _, a := range activities {
		if !Visible(a) {
			continue
		}
		out = append(out, Entry{TrackingActivity: a, Style: StyleOf(a)})
	}
	return out
}
