package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/yurivlk/contacts-api/internal/middleware"
    "github.com/yurivlk/contacts-api/internal/model"
    "github.com/yurivlk/contacts-api/internal/repository"
)

// ContactHandler serves the owner-scoped contact endpoints.  Every
// handler resolves the principal placed in the context by the auth
// middleware and passes its ID to the repository, which folds the
// ownership predicate into each query.
type ContactHandler struct {
    Contacts *repository.ContactRepo
}

func NewContactHandler(contacts *repository.ContactRepo) *ContactHandler {
    if contacts == nil {
        panic("nil repository passed to NewContactHandler")
    }
    return &ContactHandler{Contacts: contacts}
}

// birthdayLayout is the wire format for contact birthdays.
const birthdayLayout = "2006-01-02"

type contactReq struct {
    FirstName      string  `json:"first_name"`
    LastName       string  `json:"last_name"`
    Email          string  `json:"email"`
    PhoneNumber    string  `json:"phone_number"`
    Birthday       string  `json:"birthday"` // YYYY-MM-DD
    AdditionalInfo *string `json:"additional_info"`
}

type contactResp struct {
    ID             uint64  `json:"id"`
    FirstName      string  `json:"first_name"`
    LastName       string  `json:"last_name"`
    Email          string  `json:"email"`
    PhoneNumber    string  `json:"phone_number"`
    Birthday       string  `json:"birthday"`
    AdditionalInfo *string `json:"additional_info,omitempty"`
}

func toContactResp(c *model.Contact) contactResp {
    return contactResp{
        ID:             c.ID,
        FirstName:      c.FirstName,
        LastName:       c.LastName,
        Email:          c.Email,
        PhoneNumber:    c.PhoneNumber,
        Birthday:       c.Birthday.Format(birthdayLayout),
        AdditionalInfo: c.AdditionalInfo,
    }
}

func toContactResps(cs []*model.Contact) []contactResp {
    out := make([]contactResp, 0, len(cs))
    for _, c := range cs {
        out = append(out, toContactResp(c))
    }
    return out
}

// parseContactReq validates the body and converts it to a model value.
func parseContactReq(c echo.Context) (*model.Contact, error) {
    var req contactReq
    if err := c.Bind(&req); err != nil {
        return nil, errors.New("invalid body")
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.PhoneNumber == "" {
        return nil, errors.New("first_name/last_name/email/phone_number required")
    }
    if !strings.Contains(req.Email, "@") {
        return nil, errors.New("invalid email")
    }
    birthday, err := time.Parse(birthdayLayout, req.Birthday)
    if err != nil {
        return nil, errors.New("birthday must be YYYY-MM-DD")
    }
    return &model.Contact{
        FirstName:      strings.TrimSpace(req.FirstName),
        LastName:       strings.TrimSpace(req.LastName),
        Email:          req.Email,
        PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
        Birthday:       birthday,
        AdditionalInfo: req.AdditionalInfo,
    }, nil
}

// Create adds a contact for the current user.
func (h *ContactHandler) Create(c echo.Context) error {
    u := middleware.CurrentUser(c)
    in, err := parseContactReq(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    created, err := h.Contacts.Create(ctx, u.ID, in)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "contact email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create contact failed"})
    }
    return c.JSON(http.StatusCreated, toContactResp(created))
}

// List returns one page of the current user's contacts.  skip defaults
// to 0 and limit to 100; rows are ordered by id ascending.
func (h *ContactHandler) List(c echo.Context) error {
    u := middleware.CurrentUser(c)

    skip := queryInt(c, "skip", 0)
    limit := queryInt(c, "limit", 100)
    if skip < 0 {
        skip = 0
    }
    if limit < 1 || limit > 1000 {
        limit = 100
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    contacts, err := h.Contacts.List(ctx, u.ID, skip, limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, toContactResps(contacts))
}

// Get returns a single contact by id.
func (h *ContactHandler) Get(c echo.Context) error {
    u := middleware.CurrentUser(c)
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    contact, err := h.Contacts.Get(ctx, u.ID, id)
    if err != nil {
        return contactError(c, err)
    }
    return c.JSON(http.StatusOK, toContactResp(contact))
}

// Update replaces all fields of a contact.
func (h *ContactHandler) Update(c echo.Context) error {
    u := middleware.CurrentUser(c)
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    in, err := parseContactReq(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    updated, err := h.Contacts.Update(ctx, u.ID, id, in)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "contact email already exists"})
        }
        return contactError(c, err)
    }
    return c.JSON(http.StatusOK, toContactResp(updated))
}

// Delete removes a contact and returns its prior state.
func (h *ContactHandler) Delete(c echo.Context) error {
    u := middleware.CurrentUser(c)
    id, err := pathID(c)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    deleted, err := h.Contacts.Delete(ctx, u.ID, id)
    if err != nil {
        return contactError(c, err)
    }
    return c.JSON(http.StatusOK, toContactResp(deleted))
}

// Search filters contacts by case-insensitive substring match on first
// name, last name and email.  Omitted parameters impose no constraint.
func (h *ContactHandler) Search(c echo.Context) error {
    u := middleware.CurrentUser(c)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    contacts, err := h.Contacts.Search(ctx, u.ID,
        c.QueryParam("first_name"),
        c.QueryParam("last_name"),
        c.QueryParam("email"))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, toContactResps(contacts))
}

// UpcomingBirthdays returns contacts whose birthday falls within the
// next N days (default 7), matching on month and day only.
func (h *ContactHandler) UpcomingBirthdays(c echo.Context) error {
    u := middleware.CurrentUser(c)

    days := queryInt(c, "days", 7)
    if days < 1 || days > 365 {
        days = 7
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    contacts, err := h.Contacts.UpcomingBirthdays(ctx, u.ID, time.Now().UTC(), days)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    return c.JSON(http.StatusOK, toContactResps(contacts))
}

func contactError(c echo.Context, err error) error {
    if errors.Is(err, repository.ErrContactNotFound) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "contact not found"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
}

func pathID(c echo.Context) (uint64, error) {
    return strconv.ParseUint(c.Param("id"), 10, 64)
}

func queryInt(c echo.Context, name string, def int) int {
    v := c.QueryParam(name)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        return def
    }
    return n
}
