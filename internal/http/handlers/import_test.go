package handlers

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketgate/backend/internal/models"
)

func TestParseProjectsCSV(t *testing.T) {
	content := "\ufeffClient_Name,service_type,description\nカフェ A,line,駅前店\nサロン B,MEO,\n"
	fh := makeMultipartFile(t, "projects", "projects.csv", content)
	projects, errs := parseProjectsCSV(fh)
	require.Empty(t, errs)
	require.Len(t, projects, 2)
	assert.Equal(t, "カフェ A", projects[0].ClientName)
	assert.Equal(t, models.ServiceLINE, projects[0].ServiceType)
	require.NotNil(t, projects[0].Description)
	assert.Equal(t, "駅前店", *projects[0].Description)
	assert.Nil(t, projects[1].Description)
}

func TestParseProjectsCSVReportsBadRows(t *testing.T) {
	content := "id,client_name,service_type\n,,LINE\n,X,SMS\nnot-a-uuid,Y,MEO\n"
	fh := makeMultipartFile(t, "projects", "projects.csv", content)
	projects, errs := parseProjectsCSV(fh)
	assert.Empty(t, projects)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "line 2")
	assert.Contains(t, errs[1], "service_type")
	assert.Contains(t, errs[2], "uuid")
}

func TestValidateExt(t *testing.T) {
	assert.True(t, validateExt("a.CSV"))
	assert.False(t, validateExt("a.xlsx"))
}

func makeMultipartFile(t *testing.T, fieldName, filename, content string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(int64(buf.Len()))
	require.NoError(t, err)
	files := form.File[fieldName]
	require.NotEmpty(t, files)
	return files[0]
}
