package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDateTime(t *testing.T) {
	ts := time.Date(2024, 6, 1, 14, 5, 0, 0, time.UTC)

	tests := []struct {
		locale string
		want   string
	}{
		{locale: "pt-BR", want: "01/06/2024 às 14:05"},
		{locale: "", want: "01/06/2024 às 14:05"},
		{locale: "en-US", want: "06/01/2024 at 2:05 PM"},
		{locale: "es-MX", want: "01/06/2024 a las 14:05"},
		{locale: "en-AU", want: "01/06/2024 at 14:05"},
		{locale: "en", want: "01/06/2024 at 14:05"},
		{locale: "pt-AO", want: "01/06/2024 às 14:05"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDateTime(ts, tt.locale))
		})
	}
}
