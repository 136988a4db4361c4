package errors

// Exit codes used by cmd/wildside to translate a failed command into a
// process status, one per error category.
const (
	ExitValidation = 2
	ExitIO         = 3
	ExitFormat     = 4
	ExitIntegrity  = 5
	ExitTransport  = 6
	ExitSolver     = 7
)

var (
	// Validation

	ErrMissingArgument = New(CategoryValidation, "MISSING_ARGUMENT", "required argument is missing", ExitValidation)
	ErrInvalidRequest  = New(CategoryValidation, "INVALID_REQUEST", "solve request failed validation", ExitValidation)
	ErrUnknownTheme    = New(CategoryValidation, "UNKNOWN_THEME", "interest profile references an unknown theme", ExitValidation)

	// IO

	ErrMissingFile      = New(CategoryIO, "MISSING_FILE", "required file does not exist", ExitIO)
	ErrNotAFile         = New(CategoryIO, "NOT_A_FILE", "expected path to be a regular file", ExitIO)
	ErrPermissionDenied = New(CategoryIO, "PERMISSION_DENIED", "permission denied accessing path", ExitIO)

	// Format

	ErrSchemaMismatch     = New(CategoryFormat, "SCHEMA_MISMATCH", "persisted schema version does not match the supported version", ExitFormat)
	ErrInvalidMagic       = New(CategoryFormat, "INVALID_MAGIC", "spatial index file has an invalid header", ExitFormat)
	ErrUnsupportedVersion = New(CategoryFormat, "UNSUPPORTED_VERSION", "spatial index file has an unsupported version", ExitFormat)
	ErrCorruptPayload     = New(CategoryFormat, "CORRUPT_PAYLOAD", "binary artefact payload could not be decoded", ExitFormat)
	ErrInvalidTagJSON     = New(CategoryFormat, "INVALID_TAG_JSON", "persisted POI tags are not valid JSON", ExitFormat)
	ErrInvalidSitelinks   = New(CategoryFormat, "INVALID_SITELINKS", "sitelink count is not a non-negative integer", ExitFormat)
	ErrOsmDecode          = New(CategoryFormat, "OSM_DECODE", "failed to decode OSM PBF data", ExitFormat)
	ErrWikidataReadLine   = New(CategoryFormat, "WIKIDATA_READ_LINE", "failed to read Wikidata dump line", ExitFormat)
	ErrWikidataParseLine  = New(CategoryFormat, "WIKIDATA_PARSE_LINE", "failed to parse Wikidata entity", ExitFormat)
	ErrDumpManifestParse  = New(CategoryFormat, "DUMP_MANIFEST_PARSE", "failed to parse wikidata dump status manifest", ExitFormat)
	ErrDumpNotFound       = New(CategoryFormat, "DUMP_NOT_FOUND", "no done job in the dump status manifest names a -all.json.bz2 file", ExitFormat)
	ErrDumpAmbiguous      = New(CategoryFormat, "DUMP_AMBIGUOUS", "more than one done job in the dump status manifest names a -all.json.bz2 file", ExitFormat)

	// IO (continued)

	ErrOsmOpen = New(CategoryIO, "OSM_OPEN", "failed to open OSM PBF file", ExitIO)

	// Integrity

	ErrMissingIndexedPOI = New(CategoryIntegrity, "MISSING_INDEXED_POI", "spatial index references a POI id absent from the database", ExitIntegrity)
	ErrMissingClaimPOI   = New(CategoryIntegrity, "MISSING_CLAIM_POI", "claim references a POI id absent from the database", ExitIntegrity)
	ErrDumpMismatch      = New(CategoryIntegrity, "DUMP_MISMATCH", "configured wikidata dump file name does not match the resolved status manifest entry", ExitIntegrity)

	// Transport

	ErrTimeout       = New(CategoryTransport, "TIMEOUT", "request to the travel-time service timed out", ExitTransport)
	ErrHTTPStatus    = New(CategoryTransport, "HTTP_STATUS", "travel-time service returned a non-success HTTP status", ExitTransport)
	ErrNetwork       = New(CategoryTransport, "NETWORK", "network error contacting the travel-time service", ExitTransport)
	ErrResponseParse = New(CategoryTransport, "RESPONSE_PARSE", "failed to parse travel-time service response", ExitTransport)
	ErrEmptyInput    = New(CategoryTransport, "EMPTY_INPUT", "at least one point of interest is required", ExitTransport)

	// Solver

	ErrSolverInvalidRequest = New(CategorySolver, "INVALID_REQUEST", "solver received an infeasible or malformed request", ExitSolver)
	ErrSolverInternal       = New(CategorySolver, "INTERNAL", "solver encountered an unexpected internal failure", ExitSolver)
)
