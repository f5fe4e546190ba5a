package httputil

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/zf1976/pancli/pkg/logging"
)

const (
	RequestIDHeaderName = "X-Request-ID"
	requestIDFieldKey   = "request_id"
	pathFieldKey        = "path"
	servedMessage       = "HTTP call ended"
)

// ResponseRecordingWriter remembers the status code and size of a response.
type ResponseRecordingWriter struct {
	StatusCode   int
	ResponseSize int64
	Writer       http.ResponseWriter
}

func (w *ResponseRecordingWriter) Header() http.Header {
	return w.Writer.Header()
}

func (w *ResponseRecordingWriter) Write(data []byte) (int, error) {
	written, err := w.Writer.Write(data)
	w.ResponseSize += int64(written)
	return written, err
}

func (w *ResponseRecordingWriter) WriteHeader(statusCode int) {
	w.StatusCode = statusCode
	w.Writer.WriteHeader(statusCode)
}

// LoggingMiddleware tags every served request with a request id and logs it at DEBUG once
// handled.
func LoggingMiddleware(fields logging.Fields) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()
			writer := &ResponseRecordingWriter{Writer: w, StatusCode: http.StatusOK}
			reqID := r.Header.Get(RequestIDHeaderName)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			requestFields := logging.Fields{
				pathFieldKey:           r.URL.Path,
				logging.MethodFieldKey: r.Method,
				requestIDFieldKey:      reqID,
			}
			for k, v := range fields {
				requestFields[k] = v
			}
			r = r.WithContext(logging.AddFields(r.Context(), requestFields))
			writer.Header().Set(RequestIDHeaderName, reqID)
			next.ServeHTTP(writer, r)

			logging.FromContext(r.Context()).WithFields(logging.Fields{
				logging.TookFieldKey:       time.Since(startTime),
				logging.StatusCodeFieldKey: writer.StatusCode,
				"sent_bytes":               writer.ResponseSize,
			}).Debug(servedMessage)
		})
	}
}
