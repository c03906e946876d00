package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// pathID extracts and validates a UUID path parameter. It writes the 400
// envelope itself and reports ok=false when the value is missing or malformed,
// so every handler guards store access the same way.
func pathID(ctx context.Context, w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		respondError(ctx, w, http.StatusBadRequest, fmt.Sprintf("%s is missing", name))
		return "", false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, fmt.Sprintf("%s is not a valid id", name))
		return "", false
	}

	return id.String(), true
}
