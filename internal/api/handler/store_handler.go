package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/feirahub/marketplace-api/internal/core/domain"
	"github.com/feirahub/marketplace-api/internal/core/ports"
)

// maxPhotoBytes caps uploaded store photos at 5 MiB.
const maxPhotoBytes = 5 << 20

// StoreHandler handles store CRUD and the public store surface.
type StoreHandler struct {
	stores ports.StoreService
}

func NewStoreHandler(stores ports.StoreService) *StoreHandler {
	return &StoreHandler{stores: stores}
}

type createStoreRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description string  `json:"description,omitempty" validate:"max=2000"`
	Street      string  `json:"street" validate:"required"`
	City        string  `json:"city" validate:"required"`
	State       string  `json:"state" validate:"required"`
	ZipCode     string  `json:"zip_code" validate:"required"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
}

type updateStoreRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Street      *string  `json:"street,omitempty"`
	City        *string  `json:"city,omitempty"`
	State       *string  `json:"state,omitempty"`
	ZipCode     *string  `json:"zip_code,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

type storeResponse struct {
	StoreID     int64   `json:"store_id"`
	ManagerID   int64   `json:"manager_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Street      string  `json:"street"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	ZipCode     string  `json:"zip_code"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	HasPhoto    bool    `json:"has_photo"`
	CreatedAt   string  `json:"created_at"`
}

func toStoreResponse(s *domain.Store) storeResponse {
	return storeResponse{
		StoreID:     s.ID,
		ManagerID:   s.OwnerID,
		Name:        s.Name,
		Description: s.Description,
		Street:      s.Street,
		City:        s.City,
		State:       s.State,
		ZipCode:     s.ZipCode,
		Latitude:    s.Latitude,
		Longitude:   s.Longitude,
		HasPhoto:    s.PhotoKey != "",
		CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func storeIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid store id")
	}
	return id, nil
}

// Create opens a new store owned by the authenticated manager.
//
// @Summary      Create a store
// @Tags         stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createStoreRequest  true  "Store details"
// @Success      201   {object}  storeResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /stores [post]
func (h *StoreHandler) Create(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req createStoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	store, err := h.stores.Create(c.Request().Context(), claims, ports.CreateStoreInput{
		Name:        req.Name,
		Description: req.Description,
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toStoreResponse(store))
}

// Update changes a store the authenticated manager owns. Accepts either a
// JSON body or multipart form data with an optional "photo" file part.
//
// @Summary      Update a store
// @Tags         stores
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "Store id"
// @Param        body  body      updateStoreRequest  true  "Fields to change"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /stores/{id} [put]
func (h *StoreHandler) Update(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	id, err := storeIDParam(c)
	if err != nil {
		return err
	}

	in, err := h.bindUpdate(c)
	if err != nil {
		return err
	}

	if err := h.stores.Update(c.Request().Context(), claims, id, in); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "store updated"})
}

// bindUpdate reads either a JSON body or a multipart form into an
// UpdateStoreInput. Multipart is how photo uploads arrive.
func (h *StoreHandler) bindUpdate(c echo.Context) (ports.UpdateStoreInput, error) {
	var in ports.UpdateStoreInput

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		var req updateStoreRequest
		if err := c.Bind(&req); err != nil {
			return in, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
		}
		if err := c.Validate(&req); err != nil {
			return in, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		in.Changes = domain.StoreChanges{
			Name:        req.Name,
			Description: req.Description,
			Street:      req.Street,
			City:        req.City,
			State:       req.State,
			ZipCode:     req.ZipCode,
			Latitude:    req.Latitude,
			Longitude:   req.Longitude,
		}
		return in, nil
	}

	in.Changes = formChanges(c)

	fh, err := c.FormFile("photo")
	if err != nil {
		// No file part: a text-only multipart update is fine.
		return in, nil
	}
	if fh.Size > maxPhotoBytes {
		return in, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "photo too large")
	}
	f, err := fh.Open()
	if err != nil {
		return in, echo.NewHTTPError(http.StatusBadRequest, "unreadable photo")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
	if err != nil {
		return in, echo.NewHTTPError(http.StatusBadRequest, "unreadable photo")
	}
	if len(data) > maxPhotoBytes {
		return in, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "photo too large")
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	in.Photo = &ports.PhotoUpload{
		Data:        data,
		ContentType: photoContentType(ext),
		Ext:         ext,
	}
	return in, nil
}

// formChanges collects the text fields of a multipart update.
func formChanges(c echo.Context) domain.StoreChanges {
	var ch domain.StoreChanges
	if v := c.FormValue("name"); v != "" {
		ch.Name = &v
	}
	if v := c.FormValue("description"); v != "" {
		ch.Description = &v
	}
	if v := c.FormValue("street"); v != "" {
		ch.Street = &v
	}
	if v := c.FormValue("city"); v != "" {
		ch.City = &v
	}
	if v := c.FormValue("state"); v != "" {
		ch.State = &v
	}
	if v := c.FormValue("zip_code"); v != "" {
		ch.ZipCode = &v
	}
	if v := c.FormValue("latitude"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			ch.Latitude = &f
		}
	}
	if v := c.FormValue("longitude"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			ch.Longitude = &f
		}
	}
	return ch
}

func photoContentType(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// Delete removes a store the authenticated manager owns.
//
// @Summary      Delete a store
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  int  true  "Store id"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /stores/{id} [delete]
func (h *StoreHandler) Delete(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	id, err := storeIDParam(c)
	if err != nil {
		return err
	}

	if err := h.stores.Delete(c.Request().Context(), claims, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "store deleted"})
}

// ListAll returns every store. Public.
//
// @Summary      List all stores
// @Tags         stores
// @Produce      json
// @Success      200  {object}  map[string][]storeResponse
// @Router       /stores [get]
func (h *StoreHandler) ListAll(c echo.Context) error {
	stores, err := h.stores.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]storeResponse, 0, len(stores))
	for _, s := range stores {
		out = append(out, toStoreResponse(s))
	}
	return c.JSON(http.StatusOK, map[string][]storeResponse{"stores": out})
}

// ListMine returns the stores owned by the authenticated manager.
//
// @Summary      List own stores
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string][]storeResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /managers/me/stores [get]
func (h *StoreHandler) ListMine(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	stores, err := h.stores.ListOwn(c.Request().Context(), claims)
	if err != nil {
		return err
	}
	out := make([]storeResponse, 0, len(stores))
	for _, s := range stores {
		out = append(out, toStoreResponse(s))
	}
	return c.JSON(http.StatusOK, map[string][]storeResponse{"stores": out})
}

// Photo serves a store's profile photo. Public.
//
// @Summary      Store profile photo
// @Tags         stores
// @Produce      image/jpeg
// @Param        id  path  int  true  "Store id"
// @Success      200
// @Failure      404  {object}  map[string]string
// @Router       /stores/{id}/photo [get]
func (h *StoreHandler) Photo(c echo.Context) error {
	id, err := storeIDParam(c)
	if err != nil {
		return err
	}

	data, contentType, err := h.stores.Photo(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, data)
}
