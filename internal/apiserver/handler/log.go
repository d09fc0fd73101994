package handler

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dadosqualitativos/portal-api/internal/apiserver/audit"
	"github.com/dadosqualitativos/portal-api/internal/common/cnst"
	"github.com/dadosqualitativos/portal-api/internal/common/dto"
	"github.com/dadosqualitativos/portal-api/internal/i18n"
)

const dateLayout = "2006-01-02"

// ListLogs returns a filtered page of audit entries, newest first.
// Accepted query parameters: page, page_size, date (whole day) or
// date_start/date_end, actor (case-insensitive substring), action and
// module (exact).
func (h *Handler) ListLogs(c *gin.Context) {
	filter := audit.Filter{
		ActorName: c.Query("actor"),
		Action:    cnst.Action(c.Query("action")),
		Module:    cnst.Module(c.Query("module")),
	}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.PageSize, _ = strconv.Atoi(c.Query("page_size"))

	if day := c.Query("date"); day != "" {
		t, err := time.Parse(dateLayout, day)
		if err != nil {
			i18n.RespondWithError(c, i18n.ErrBadRequest)
			return
		}
		from := t
		to := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.From = &from
		filter.To = &to
	} else {
		if start := c.Query("date_start"); start != "" {
			t, err := time.Parse(dateLayout, start)
			if err != nil {
				i18n.RespondWithError(c, i18n.ErrBadRequest)
				return
			}
			filter.From = &t
		}
		if end := c.Query("date_end"); end != "" {
			t, err := time.Parse(dateLayout, end)
			if err != nil {
				i18n.RespondWithError(c, i18n.ErrBadRequest)
				return
			}
			to := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			filter.To = &to
		}
	}

	page, err := h.recorder.Query(c.Request.Context(), filter)
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	i18n.Success(i18n.SuccessLogList).WithPayload(gin.H{
		"logs":  page.Entries,
		"total": page.Total,
		"page":  page.Page,
		"pages": page.Pages,
	}).Send(c)
}

// CreateLog records a client-submitted audit entry. The action and
// module have to belong to the fixed vocabulary.
func (h *Handler) CreateLog(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	var req dto.CreateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		i18n.RespondWithError(c, i18n.ErrorRequiredFields)
		return
	}

	err := h.recorder.RecordExternal(c.Request.Context(), id.Actor(),
		cnst.Action(req.Action), cnst.Module(req.Module), req.Details)
	switch {
	case errors.Is(err, audit.ErrInvalidAction):
		i18n.RespondWithError(c, i18n.ErrorLogInvalidAction)
		return
	case errors.Is(err, audit.ErrInvalidModule):
		i18n.RespondWithError(c, i18n.ErrorLogInvalidModule)
		return
	case err != nil:
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	i18n.Created(i18n.SuccessLogRecorded).Send(c)
}

// ClearListLogs bulk-deletes persisted listing entries. Administrator
// only; the deletion itself leaves one summary entry with the count.
func (h *Handler) ClearListLogs(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	removed, err := h.recorder.ClearListEntries(ctx)
	if err != nil {
		i18n.RespondWithError(c, i18n.ErrInternalServer)
		return
	}

	h.recorder.Record(ctx, id.Actor(), cnst.ActionDelete, cnst.ModuleLogs,
		fmt.Sprintf("cleared %d listing entries", removed))
	i18n.Success(i18n.SuccessLogListCleared).WithPayload(gin.H{"removed": removed}).Send(c)
}
