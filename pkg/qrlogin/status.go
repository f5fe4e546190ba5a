package qrlogin

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// ScanState is the provider's view of a QR login code.
type ScanState int

const (
	StatusPending ScanState = iota
	StatusScanned
	StatusConfirmed
	StatusExpired
	StatusCancelled
)

var scanStateNames = map[string]ScanState{
	"NEW":       StatusPending,
	"SCANED":    StatusScanned,
	"CONFIRMED": StatusConfirmed,
	"EXPIRED":   StatusExpired,
	"CANCELED":  StatusCancelled,
}

// String returns the value the provider uses for the state.
func (s ScanState) String() string {
	switch s {
	case StatusPending:
		return "NEW"
	case StatusScanned:
		return "SCANED"
	case StatusConfirmed:
		return "CONFIRMED"
	case StatusExpired:
		return "EXPIRED"
	case StatusCancelled:
		return "CANCELED"
	default:
		return fmt.Sprintf("ScanState(%d)", int(s))
	}
}

// Terminal reports whether polling stops at this state.
func (s ScanState) Terminal() bool {
	return s == StatusConfirmed || s == StatusExpired || s == StatusCancelled
}

// LoginArtifact is the mobile access token carried by a confirmed scan.
type LoginArtifact struct {
	Token string
}

// ScanStatus is one observation of a code.  Artifact is set only when State is StatusConfirmed.
type ScanStatus struct {
	State    ScanState
	Artifact LoginArtifact
}

type queryResponse struct {
	Content struct {
		Data struct {
			QRCodeStatus string `json:"qrCodeStatus"`
			ResultCode   int    `json:"resultCode"`
			BizExt       string `json:"bizExt"`
		} `json:"data"`
		Success bool `json:"success"`
	} `json:"content"`
	HasError bool `json:"hasError"`
}

type bizExt struct {
	PDSLoginResult struct {
		AccessToken string `json:"accessToken"`
	} `json:"pds_login_result"`
}

// decodeScanStatus maps a query payload to a ScanStatus.  An unknown status wraps
// ErrUnknownScanStatus; a confirmation without a usable token wraps ErrMalformedArtifact.
func decodeScanStatus(body []byte) (ScanStatus, error) {
	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ScanStatus{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	name := resp.Content.Data.QRCodeStatus
	state, ok := scanStateNames[name]
	if !ok {
		return ScanStatus{}, fmt.Errorf("%w: %q", ErrUnknownScanStatus, name)
	}
	if state != StatusConfirmed {
		return ScanStatus{State: state}, nil
	}
	artifact, err := decodeArtifact(resp.Content.Data.BizExt)
	if err != nil {
		return ScanStatus{State: state}, err
	}
	return ScanStatus{State: state, Artifact: artifact}, nil
}

func decodeArtifact(encoded string) (LoginArtifact, error) {
	if encoded == "" {
		return LoginArtifact{}, fmt.Errorf("%w: empty bizExt", ErrMalformedArtifact)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return LoginArtifact{}, fmt.Errorf("%w: %w", ErrMalformedArtifact, err)
	}
	var ext bizExt
	if err := json.Unmarshal(raw, &ext); err != nil {
		return LoginArtifact{}, fmt.Errorf("%w: %w", ErrMalformedArtifact, err)
	}
	if ext.PDSLoginResult.AccessToken == "" {
		return LoginArtifact{}, fmt.Errorf("%w: missing access token", ErrMalformedArtifact)
	}
	return LoginArtifact{Token: ext.PDSLoginResult.AccessToken}, nil
}
