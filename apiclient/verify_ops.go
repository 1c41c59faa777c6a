package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pkg/errors"

	"github.com/authdoc/go-authdoc-client/verification"
)

const (
	verifyAadhaarPath = "/verify/aadhaar/"
	verifyResultPath  = "/verify/results/%d/"
)

// VerifyDocument submits a document for verification. The request is
// validated locally first, so malformed submissions never reach the wire.
func (c *Client) VerifyDocument(ctx context.Context, req verification.Request) (*verification.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("aadhaar_number", req.AadhaarNumber); err != nil {
		return nil, errors.Wrap(err, "[Client.VerifyDocument] WriteField")
	}
	if err := writeFilePart(writer, "document", req.DocumentName, req.Document); err != nil {
		return nil, err
	}
	if req.Template != nil {
		if err := writeFilePart(writer, "template", req.TemplateName, req.Template); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "[Client.VerifyDocument] Close")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(verifyAadhaarPath), &buf)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.VerifyDocument] NewRequest")
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var out verification.Result
	if err := c.do(httpReq, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerificationResult fetches a stored verification record by ID.
func (c *Client) VerificationResult(ctx context.Context, id int64) (*verification.Record, error) {
	var out verification.Record
	if err := c.getJSON(ctx, fmt.Sprintf(verifyResultPath, id), http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func writeFilePart(writer *multipart.Writer, field, filename string, r io.Reader) error {
	if filename == "" {
		filename = field
	}
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return errors.Wrapf(err, "[writeFilePart] CreateFormFile %s", field)
	}
	if _, err := io.Copy(part, r); err != nil {
		return errors.Wrapf(err, "[writeFilePart] Copy %s", field)
	}
	return nil
}
