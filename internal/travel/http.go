package travel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	jsoncodec "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/wildside/wildside/internal/domain"
	apperrors "github.com/wildside/wildside/internal/pkg/errors"
)

// DefaultTimeout is the connect-and-overall timeout applied to every
// outbound OSRM table request, per spec.md §5.
const DefaultTimeout = 30 * time.Second

// osrmTableResponse is the wire shape of OSRM's Table API response.
type osrmTableResponse struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Durations [][]*float64 `json:"durations"`
}

// HTTPProvider calls an OSRM-compatible Table API to compute a walking
// travel-time matrix between POIs.
type HTTPProvider struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewHTTPProvider builds a Provider against baseURL (trailing slashes
// trimmed), using DefaultTimeout for every request; logger may be nil to
// disable failure logging.
func NewHTTPProvider(baseURL string, logger *zap.Logger) *HTTPProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPProvider{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// GetTravelTimeMatrix implements Provider.
func (p *HTTPProvider) GetTravelTimeMatrix(ctx context.Context, pois []domain.PointOfInterest) (Matrix, error) {
	if err := validateInput(pois); err != nil {
		return nil, err
	}

	url := p.buildURL(pois)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.ErrNetwork.WithCause(err).WithDetails(map[string]any{"url": url})
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, p.classifyTransportError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("osrm table request failed",
			zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil, apperrors.ErrHTTPStatus.WithDetails(map[string]any{
			"url": url, "status": resp.StatusCode,
		})
	}

	var decoded osrmTableResponse
	if err := jsoncodec.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		p.logger.Error("osrm table response parse failed", zap.String("url", url), zap.Error(err))
		return nil, apperrors.ErrResponseParse.WithCause(err).WithDetails(map[string]any{"url": url})
	}

	if decoded.Code != "Ok" {
		p.logger.Error("osrm table service error",
			zap.String("url", url), zap.String("code", decoded.Code), zap.String("message", decoded.Message))
		return nil, apperrors.ErrHTTPStatus.WithDetails(map[string]any{
			"url": url, "code": decoded.Code, "message": decoded.Message,
		})
	}

	return decodeDurations(decoded.Durations), nil
}

func (p *HTTPProvider) buildURL(pois []domain.PointOfInterest) string {
	coords := make([]string, len(pois))
	for i, poi := range pois {
		coords[i] = fmt.Sprintf("%g,%g", poi.Location.Lon(), poi.Location.Lat())
	}
	return fmt.Sprintf("%s/table/v1/walking/%s", p.baseURL, strings.Join(coords, ";"))
}

func (p *HTTPProvider) classifyTransportError(url string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		p.logger.Error("osrm table request timed out", zap.String("url", url), zap.Error(err))
		return apperrors.ErrTimeout.WithCause(err).WithDetails(map[string]any{
			"url": url, "timeout_secs": DefaultTimeout.Seconds(),
		})
	}
	p.logger.Error("osrm table request failed", zap.String("url", url), zap.Error(err))
	return apperrors.ErrNetwork.WithCause(err).WithDetails(map[string]any{"url": url})
}

// decodeDurations maps OSRM's nullable-seconds cells to Duration, treating
// null, negative, NaN, or infinite values as Unreachable. The diagonal is
// always zero, whatever the service reports for it.
func decodeDurations(durations [][]*float64) Matrix {
	matrix := make(Matrix, len(durations))
	for i, row := range durations {
		matrix[i] = make([]time.Duration, len(row))
		for j, cell := range row {
			if i == j {
				continue
			}
			matrix[i][j] = cellToDuration(cell)
		}
	}
	return matrix
}

func cellToDuration(cell *float64) time.Duration {
	if cell == nil {
		return Unreachable
	}
	v := *cell
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Unreachable
	}
	return time.Duration(v * float64(time.Second))
}
