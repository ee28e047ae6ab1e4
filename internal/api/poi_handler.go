package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/phrazzld/cityinfo-api/internal/api/shared"
	"github.com/phrazzld/cityinfo-api/internal/domain"
	"github.com/phrazzld/cityinfo-api/internal/jsonpatch"
	"github.com/phrazzld/cityinfo-api/internal/mail"
	"github.com/phrazzld/cityinfo-api/internal/platform/logger"
	"github.com/phrazzld/cityinfo-api/internal/store"
)

// Messages produced by the point of interest handler.
const (
	DeletedMessage        = "Point of Interest deleted successfully."
	DeletedMailSubject    = "Point of interest deleted"
	deletedMailBodyFormat = "Point of interest %s with id %d has been deleted."
)

// PatchContentType is the media type of a JSON Patch document.
const PatchContentType = "application/json-patch+json"

// PointOfInterestHandler handles point-of-interest HTTP requests
type PointOfInterestHandler struct {
	repos  store.RepositoryFactory
	mailer mail.Mailer
	logger *slog.Logger
}

// NewPointOfInterestHandler creates a new PointOfInterestHandler
func NewPointOfInterestHandler(
	repos store.RepositoryFactory,
	mailer mail.Mailer,
	logger *slog.Logger,
) *PointOfInterestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PointOfInterestHandler{
		repos:  repos,
		mailer: mailer,
		logger: logger.With(slog.String("component", "poi_handler")),
	}
}

// PointOfInterestLocation returns the path of the single point of interest route.
func PointOfInterestLocation(cityID, poiID int) string {
	return fmt.Sprintf("/api/cities/%d/poi/%d", cityID, poiID)
}

// GetPointsOfInterest handles GET /api/cities/{cityId}/poi requests
func (h *PointOfInterestHandler) GetPointsOfInterest(w http.ResponseWriter, r *http.Request) {
	ids, ok := handlePathIDs(w, r, "cityId")
	if !ok {
		return
	}
	cityID := ids[0]

	repo := h.repos.NewRepository()
	if !h.requireCity(w, r, repo, cityID) {
		return
	}

	pois, err := repo.GetPointsOfInterestForCity(r.Context(), cityID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	shared.Respond(w, r, http.StatusOK, shared.List("PointsOfInterest", ToPointOfInterestDtos(pois)))
}

// GetPointOfInterest handles GET /api/cities/{cityId}/poi/{poiId} requests
func (h *PointOfInterestHandler) GetPointOfInterest(w http.ResponseWriter, r *http.Request) {
	ids, ok := handlePathIDs(w, r, "cityId", "poiId")
	if !ok {
		return
	}

	repo := h.repos.NewRepository()
	poi, ok := h.loadPointOfInterest(w, r, repo, ids[0], ids[1])
	if !ok {
		return
	}

	shared.Respond(w, r, http.StatusOK, ToPointOfInterestDto(*poi))
}

// CreatePointOfInterest handles POST /api/cities/{cityId}/poi requests.
// It responds 201 with the created point of interest and its location.
func (h *PointOfInterestHandler) CreatePointOfInterest(w http.ResponseWriter, r *http.Request) {
	ids, ok := handlePathIDs(w, r, "cityId")
	if !ok {
		return
	}
	cityID := ids[0]

	var req PointOfInterestForCreation
	if !decodeAndValidate(w, r, &req) {
		return
	}

	repo := h.repos.NewRepository()
	if !h.requireCity(w, r, repo, cityID) {
		return
	}

	poi := PointOfInterestFromCreation(req)
	if err := repo.AddPointOfInterestForCity(r.Context(), cityID, poi); err != nil {
		handleError(w, r, err)
		return
	}
	if !h.save(w, r, repo) {
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("point of interest created",
		slog.Int("city_id", cityID),
		slog.Int("poi_id", poi.ID))

	w.Header().Set("Location", PointOfInterestLocation(cityID, poi.ID))
	shared.Respond(w, r, http.StatusCreated, ToPointOfInterestDto(*poi))
}

// UpdatePointOfInterest handles PUT /api/cities/{cityId}/poi/{poiId} requests.
// Name and description are replaced by the request body.
func (h *PointOfInterestHandler) UpdatePointOfInterest(w http.ResponseWriter, r *http.Request) {
	ids, ok := handlePathIDs(w, r, "cityId", "poiId")
	if !ok {
		return
	}

	var req PointOfInterestForUpdate
	if !decodeAndValidate(w, r, &req) {
		return
	}

	repo := h.repos.NewRepository()
	poi, ok := h.loadPointOfInterest(w, r, repo, ids[0], ids[1])
	if !ok {
		return
	}

	ApplyPointOfInterestUpdate(req, poi)
	if !h.save(w, r, repo) {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PartiallyUpdatePointOfInterest handles PATCH /api/cities/{cityId}/poi/{poiId}
// requests carrying a JSON Patch document. The patch is applied to the update
// view of the point of interest, which is validated before anything is saved.
func (h *PointOfInterestHandler) PartiallyUpdatePointOfInterest(w http.ResponseWriter, r *http.Request) {
	ids, ok := handlePathIDs(w, r, "cityId", "poiId")
	if !ok {
		return
	}

	if !acceptsPatch(r.Header.Get("Content-Type")) {
		shared.RespondWithError(w, r, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Content-Type must be %s", PatchContentType))
		return
	}

	body, err := shared.ReadBody(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	patch, err := jsonpatch.Decode(body)
	if err != nil {
		shared.RespondWithValidationError(w, r, patchValidationError(err))
		return
	}

	repo := h.repos.NewRepository()
	poi, ok := h.loadPointOfInterest(w, r, repo, ids[0], ids[1])
	if !ok {
		return
	}

	view := ToPointOfInterestForUpdate(*poi)
	if err := jsonpatch.ApplyTo(patch, &view); err != nil {
		shared.RespondWithValidationError(w, r, patchValidationError(err))
		return
	}
	if err := shared.ValidateRequest(view); err != nil {
		handleError(w, r, err)
		return
	}

	ApplyPointOfInterestUpdate(view, poi)
	if !h.save(w, r, repo) {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeletePointOfInterest handles DELETE /api/cities/{cityId}/poi/{poiId}
// requests. After the deletion is saved a notification mail is sent.
func (h *PointOfInterestHandler) DeletePointOfInterest(w http.ResponseWriter, r *http.Request) {
	ids, ok := handlePathIDs(w, r, "cityId", "poiId")
	if !ok {
		return
	}

	repo := h.repos.NewRepository()
	poi, ok := h.loadPointOfInterest(w, r, repo, ids[0], ids[1])
	if !ok {
		return
	}

	repo.DeletePointOfInterest(poi)
	if !h.save(w, r, repo) {
		return
	}

	h.notifyDeleted(r.Context(), *poi)

	shared.Respond(w, r, http.StatusOK, shared.MessageResponse{Message: DeletedMessage})
}

// notifyDeleted sends the deletion mail. Delivery failures are logged and do
// not affect the response.
func (h *PointOfInterestHandler) notifyDeleted(ctx context.Context, poi domain.PointOfInterest) {
	if h.mailer == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, h.logger)
	message := fmt.Sprintf(deletedMailBodyFormat, poi.Name, poi.ID)
	if err := h.mailer.Send(ctx, DeletedMailSubject, message); err != nil {
		log.Error("failed to send deletion mail",
			slog.Int("poi_id", poi.ID),
			slog.String("error", err.Error()))
	}
}

// requireCity writes a 404 and returns false when the city does not exist.
func (h *PointOfInterestHandler) requireCity(
	w http.ResponseWriter,
	r *http.Request,
	repo store.CityInfoRepository,
	cityID int,
) bool {
	exists, err := repo.CityExists(r.Context(), cityID)
	if err != nil {
		handleError(w, r, err)
		return false
	}
	if !exists {
		logger.FromContextOrDefault(r.Context(), h.logger).Info("city does not exist",
			slog.Int("city_id", cityID))
		shared.RespondNotFound(w, r, "city not found")
		return false
	}
	return true
}

// loadPointOfInterest checks the city and fetches the point of interest
// scoped to it. It writes the error response and returns false on failure.
func (h *PointOfInterestHandler) loadPointOfInterest(
	w http.ResponseWriter,
	r *http.Request,
	repo store.CityInfoRepository,
	cityID, poiID int,
) (*domain.PointOfInterest, bool) {
	if !h.requireCity(w, r, repo, cityID) {
		return nil, false
	}
	poi, err := repo.GetPointOfInterestForCity(r.Context(), cityID, poiID)
	if err != nil {
		handleError(w, r, err)
		return nil, false
	}
	return poi, true
}

// save commits the unit of work, writing a 500 on failure.
func (h *PointOfInterestHandler) save(w http.ResponseWriter, r *http.Request, repo store.CityInfoRepository) bool {
	ok, err := repo.SaveChanges(r.Context())
	if err != nil {
		handleError(w, r, err)
		return false
	}
	if !ok {
		handleError(w, r, errSaveFailed)
		return false
	}
	return true
}

// decodeAndValidate decodes the body into req and validates it, writing a
// 400 and returning false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := shared.DecodeBody(w, r, req); err != nil {
		handleError(w, r, err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		handleError(w, r, err)
		return false
	}
	return true
}

func acceptsPatch(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == PatchContentType || mt == "application/json"
}

// patchValidationError reports a patch failure under the JSON Pointer of the
// operation, or under the offending member of the update view.
func patchValidationError(err error) *domain.ValidationError {
	var opErr *jsonpatch.Error
	if errors.As(err, &opErr) {
		key := opErr.Path
		if key == "" {
			key = fmt.Sprintf("patch[%d]", opErr.Index)
		}
		return domain.NewValidationError(key, opErr.Err.Error())
	}
	var targetErr *jsonpatch.TargetError
	if errors.As(err, &targetErr) && targetErr.Field != "" {
		return domain.NewValidationError(targetErr.Field, targetErr.Err.Error())
	}
	return domain.NewValidationError("patch", err.Error())
}
