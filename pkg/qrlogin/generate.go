package qrlogin

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/zf1976/pancli/pkg/logging"
)

// QRCodeHandle is a freshly generated login code.  CodeContent is what the QR code encodes;
// T and CK together identify the code when querying its status.
type QRCodeHandle struct {
	CodeContent string
	T           int64
	CK          string
	IssuedAt    time.Time
}

// ID returns the correlation identifier used to look up the code's status.
func (h *QRCodeHandle) ID() string {
	return h.CK
}

// queryForm is the form the status endpoint expects for this code.
func (h *QRCodeHandle) queryForm() url.Values {
	return url.Values{
		"t":           {strconv.FormatInt(h.T, 10)},
		"ck":          {h.CK},
		"appName":     {"aliyun_drive"},
		"appEntrance": {"web"},
		"isMobile":    {"false"},
		"lang":        {"zh_CN"},
		"returnUrl":   {""},
		"fromSite":    {"52"},
		"bizParams":   {""},
		"navlanguage": {"zh-CN"},
		"navPlatform": {"MacIntel"},
	}
}

type generateResponse struct {
	Content struct {
		Data struct {
			T           int64  `json:"t"`
			CodeContent string `json:"codeContent"`
			CK          string `json:"ck"`
			ResultCode  int    `json:"resultCode"`
		} `json:"data"`
		Success bool `json:"success"`
	} `json:"content"`
	HasError bool `json:"hasError"`
}

// Generator requests new QR login codes.  The generate endpoint is anonymous.
type Generator struct {
	transport Transport
	endpoint  string
}

func NewGenerator(transport Transport, endpoint string) *Generator {
	return &Generator{transport: transport, endpoint: endpoint}
}

func (g *Generator) Generate(ctx context.Context) (*QRCodeHandle, error) {
	resp, err := g.transport.Get(ctx, EndpointGenerate, g.endpoint)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &GenerationError{StatusCode: resp.StatusCode, Body: resp.Text(), Err: ErrUnexpectedStatus}
	}

	var out generateResponse
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, &GenerationError{StatusCode: resp.StatusCode, Body: resp.Text(), Err: fmt.Errorf("%w: %w", ErrMalformedPayload, err)}
	}
	data := out.Content.Data
	var missing string
	switch {
	case out.HasError:
		missing = "provider reported an error"
	case data.CK == "":
		missing = "missing ck"
	case data.T == 0:
		missing = "missing t"
	case data.CodeContent == "":
		missing = "missing codeContent"
	}
	if missing != "" {
		return nil, &GenerationError{StatusCode: resp.StatusCode, Body: resp.Text(), Err: fmt.Errorf("%w: %s", ErrMalformedPayload, missing)}
	}

	handle := &QRCodeHandle{
		CodeContent: data.CodeContent,
		T:           data.T,
		CK:          data.CK,
		IssuedAt:    time.UnixMilli(data.T),
	}
	logging.FromContext(ctx).WithField("ck", handle.ID()).Debug("qr code generated")
	return handle, nil
}
