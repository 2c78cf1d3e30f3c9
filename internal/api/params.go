package api

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"jokebox/internal/errors"
)

// invalidIndexMessage is the user-visible message for non-numeric lookup tokens
const invalidIndexMessage = "Please enter a valid number"

// ParseIndexToken validates a path token as a base-10 joke index.
// Non-numeric tokens yield an InvalidIndex error with the canonical message.
// Numeric tokens beyond int range are syntactically valid, so they map to
// not-found rather than invalid: no dataset can hold a joke at that position.
func ParseIndexToken(token string) (int, *errors.JokeError) {
	i, err := strconv.Atoi(token)
	if err != nil {
		if stderrors.Is(err, strconv.ErrRange) {
			return 0, errors.New(errors.JokeNotFound, "No jokes found").
				WithDetails(map[string]interface{}{"token": token})
		}
		return 0, errors.New(errors.InvalidIndex, invalidIndexMessage).
			WithDetails(map[string]interface{}{"token": token})
	}
	return i, nil
}

// ListParams represents query parameters for the listing endpoint
type ListParams struct {
	Limit  int
	Offset int
}

// ParseListParams extracts and validates pagination parameters
func ParseListParams(r *http.Request) (*ListParams, *errors.JokeError) {
	params := &ListParams{
		Limit:  QueryParamInt(r, "limit", 50),
		Offset: QueryParamInt(r, "offset", 0),
	}

	if params.Limit < 0 {
		return nil, errors.New(errors.InvalidIndex, "limit must be non-negative")
	}
	if params.Offset < 0 {
		return nil, errors.New(errors.InvalidIndex, "offset must be non-negative")
	}
	if params.Limit > 500 {
		params.Limit = 500
	}

	return params, nil
}

// GetPathParam extracts a path parameter from the URL.
// For example, with prefix "/jokes/", it returns whatever follows the prefix.
func GetPathParam(r *http.Request, prefix string) string {
	path := r.URL.Path
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	return strings.TrimPrefix(path, prefix)
}

// QueryParamInt extracts an integer query parameter with a default value
func QueryParamInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}
