package retcode

import "net/http"

// Business codes kept compatible with the legacy site API. Negative values are
// failures; SUCCESS is the only positive code.
const (
	SUCCESS          = 1
	INVALID          = -1
	DB_SAVE_ERROR    = -2
	DB_READ_ERROR    = -3
	FILE_SAVE_ERROR  = -6
	LOGIN_ERROR      = -7
	NOT_EXISTS       = -8
	JSON_PARSE_FAIL  = -9
	EMPTY_PARAMS     = -12
	DATA_EXISTS      = -13
	AUTH_ERROR       = -14
	FORBIDDEN        = -15
	RECORD_NOT_FOUND = -19
	DELETE_FAILED    = -20
	ADD_FAILED       = -21
	UPDATE_FAILED    = -22
	NO_MATCH         = -23
	PARAM_INVALID    = -995
	TOKEN_TIMEOUT    = -996
	UNKNOWN          = -998
	EXCEPTION        = -999
)

type CodeInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func All() map[string]CodeInfo {
	return map[string]CodeInfo{
		"SUCCESS":          {SUCCESS, "ok"},
		"INVALID":          {INVALID, "invalid operation"},
		"DB_SAVE_ERROR":    {DB_SAVE_ERROR, "failed to save data"},
		"DB_READ_ERROR":    {DB_READ_ERROR, "failed to read data"},
		"FILE_SAVE_ERROR":  {FILE_SAVE_ERROR, "failed to save file"},
		"LOGIN_ERROR":      {LOGIN_ERROR, "login failed"},
		"NOT_EXISTS":       {NOT_EXISTS, "not found"},
		"JSON_PARSE_FAIL":  {JSON_PARSE_FAIL, "malformed JSON"},
		"EMPTY_PARAMS":     {EMPTY_PARAMS, "required data missing"},
		"DATA_EXISTS":      {DATA_EXISTS, "already exists"},
		"AUTH_ERROR":       {AUTH_ERROR, "authentication failed"},
		"FORBIDDEN":        {FORBIDDEN, "access denied"},
		"RECORD_NOT_FOUND": {RECORD_NOT_FOUND, "record not found"},
		"DELETE_FAILED":    {DELETE_FAILED, "delete failed"},
		"ADD_FAILED":       {ADD_FAILED, "create failed"},
		"UPDATE_FAILED":    {UPDATE_FAILED, "update failed"},
		"NO_MATCH":         {NO_MATCH, "no matching record"},
		"PARAM_INVALID":    {PARAM_INVALID, "invalid parameters"},
		"TOKEN_TIMEOUT":    {TOKEN_TIMEOUT, "token expired"},
		"UNKNOWN":          {UNKNOWN, "unknown error"},
		"EXCEPTION":        {EXCEPTION, "internal error"},
	}
}

// HTTPStatus maps a business code onto the HTTP status the admin API answers with.
func HTTPStatus(code int) int {
	switch code {
	case SUCCESS:
		return http.StatusOK
	case JSON_PARSE_FAIL, EMPTY_PARAMS, PARAM_INVALID:
		return http.StatusUnprocessableEntity
	case NOT_EXISTS, RECORD_NOT_FOUND:
		return http.StatusNotFound
	case DATA_EXISTS, NO_MATCH:
		return http.StatusConflict
	case AUTH_ERROR, LOGIN_ERROR, TOKEN_TIMEOUT:
		return http.StatusUnauthorized
	case FORBIDDEN:
		return http.StatusForbidden
	case INVALID:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
