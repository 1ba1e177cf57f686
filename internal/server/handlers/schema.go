package handlers

import (
	"context"
	"reflect"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
	apierrors "github.com/maruel/jsonledit/internal/errors"
	"github.com/maruel/jsonledit/internal/models"
	"github.com/maruel/jsonledit/internal/session"
)

// schemaTypes are the API payloads whose schema can be fetched by name.
var schemaTypes = map[string]reflect.Type{
	"action":         reflect.TypeFor[models.ActionResponse](),
	"buffer":         reflect.TypeFor[models.BufferResponse](),
	"commit_all":     reflect.TypeFor[models.CommitAllRequest](),
	"create_session": reflect.TypeFor[models.CreateSessionRequest](),
	"diff":           reflect.TypeFor[session.BufferDiff](),
	"files":          reflect.TypeFor[models.ListFilesResponse](),
	"file_version":   reflect.TypeFor[models.FileVersionResponse](),
	"history":        reflect.TypeFor[models.HistoryResponse](),
	"patch_buffer":   reflect.TypeFor[models.PatchBufferRequest](),
	"put_buffer":     reflect.TypeFor[models.PutBufferRequest](),
	"records":        reflect.TypeFor[models.ListRecordsResponse](),
	"selection":      reflect.TypeFor[models.SetSelectionRequest](),
	"session":        reflect.TypeFor[models.SessionResponse](),
}

// SchemaHandler serves JSON schemas of the API payloads.
type SchemaHandler struct{}

// GetSchema returns the JSON schema of the named payload, with inline
// properties.
func (h *SchemaHandler) GetSchema(ctx context.Context, req models.SchemaRequest) (*jsonschema.Schema, error) {
	t, ok := schemaTypes[req.Name]
	if !ok {
		names := make([]string, 0, len(schemaTypes))
		for n := range schemaTypes {
			names = append(names, n)
		}
		slices.Sort(names)
		return nil, apierrors.NotFound("schema").WithDetail("available", strings.Join(names, ","))
	}
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	return r.ReflectFromType(t), nil
}
