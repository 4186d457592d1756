package s3_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Recursos-api/internal/infrastructure/s3"
	"github.com/jhoicas/Recursos-api/pkg/config"
)

// recordingTransport responde 200 a cada PUT y guarda cuerpo y ruta.
type recordingTransport struct {
	mu          sync.Mutex
	path        string
	body        string
	contentType string
	status      int
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	raw, _ := io.ReadAll(req.Body)
	t.path = req.URL.Path
	t.body = string(raw)
	t.contentType = req.Header.Get("Content-Type")
	status := t.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Etag": []string{`"abc"`}},
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}, nil
}

func newArchive(rt http.RoundTripper) *s3.ReportArchive {
	awsCfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIA", "SECRET", ""),
		HTTPClient:  &http.Client{Transport: rt},
	}
	return s3.NewReportArchiveWithConfig(awsCfg, config.ReportsConfig{
		Bucket:       "reportes",
		Endpoint:     "https://mock.s3.local",
		UsePathStyle: true,
	})
}

func TestReportArchive_StoreSubeElObjeto(t *testing.T) {
	rt := &recordingTransport{}
	archive := newArchive(rt)

	key, err := archive.Store(context.Background(), "reports/managers/m1/1.pdf", []byte("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, "reports/managers/m1/1.pdf", key)
	assert.Equal(t, "/reportes/reports/managers/m1/1.pdf", rt.path)
	assert.Contains(t, rt.body, "%PDF-1.4")
	assert.Equal(t, "application/pdf", rt.contentType)
}

func TestReportArchive_ErrorDelServidor(t *testing.T) {
	archive := newArchive(&recordingTransport{status: http.StatusForbidden})

	_, err := archive.Store(context.Background(), "k.pdf", []byte("x"), "application/pdf")
	assert.Error(t, err)
}
