package middleware

import (
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// gzipWriter сжимает тело ответа. Ответы без тела (204, 304) проходят как есть.
type gzipWriter struct {
	http.ResponseWriter
	zw          *gzip.Writer
	wroteHeader bool
	passthrough bool
}

func (w *gzipWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	if statusCode == http.StatusNoContent || statusCode == http.StatusNotModified {
		w.passthrough = true
	} else {
		w.Header().Del("Content-Length")
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.passthrough {
		return w.ResponseWriter.Write(b)
	}
	if w.zw == nil {
		w.zw = gzip.NewWriter(w.ResponseWriter)
	}
	return w.zw.Write(b)
}

func (w *gzipWriter) close() error {
	if w.zw == nil {
		return nil
	}
	return w.zw.Close()
}

type gzipReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

func (c *gzipReader) Read(p []byte) (int, error) {
	return c.zr.Read(p)
}

func (c *gzipReader) Close() error {
	if err := c.r.Close(); err != nil {
		return err
	}
	return c.zr.Close()
}

// GzipMiddleware распаковывает тело запроса с Content-Encoding: gzip и сжимает
// ответ, если клиент его принимает.
func GzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			zr, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, "invalid gzip body", http.StatusBadRequest)
				return
			}
			r.Body = &gzipReader{r: r.Body, zr: zr}
			r.Header.Del("Content-Encoding")
		}

		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		gw := &gzipWriter{ResponseWriter: w}
		defer gw.close()

		next.ServeHTTP(gw, r)
	})
}
