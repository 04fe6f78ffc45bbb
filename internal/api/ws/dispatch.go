package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wwwqqqzzz/digital-workspace-os/internal/domain/tab"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/domain/view"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/domain/workspace"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/infrastructure/logging"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/types"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/utils"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/store"
)

// LayoutSink receives validated layout hints. The core never consumes them;
// they are forwarded to the window-chrome collaborator.
type LayoutSink interface {
	SetTopbarHeight(height int)
	SetContentBounds(x, y, width, height int)
}

// NopLayout discards layout hints.
type NopLayout struct{}

func (NopLayout) SetTopbarHeight(int) {}

func (NopLayout) SetContentBounds(int, int, int, int) {}

// Router validates envelope requests and dispatches them into the session
// core.
type Router struct {
	registry *workspace.Registry
	cache    *tab.Cache
	pool     *view.Pool
	store    *store.Store
	layout   LayoutSink
	logger   *logging.Logger
}

// NewRouter creates a router over the session core.
func NewRouter(
	registry *workspace.Registry,
	cache *tab.Cache,
	pool *view.Pool,
	st *store.Store,
	layout LayoutSink,
	logger *logging.Logger,
) *Router {
	if layout == nil {
		layout = NopLayout{}
	}
	return &Router{
		registry: registry,
		cache:    cache,
		pool:     pool,
		store:    st,
		layout:   layout,
		logger:   logger,
	}
}

// Dispatch handles one envelope request and returns its response. The
// correlation id always echoes the request's.
func (r *Router) Dispatch(req types.Request) types.Response {
	if req.APIVersion != types.APIVersion {
		return fail(req, types.CodeValidation, fmt.Sprintf("unsupported api_version %q", req.APIVersion))
	}
	if strings.TrimSpace(req.CorrelationID) == "" {
		return fail(req, types.CodeValidation, "correlation_id is required")
	}

	resp := r.route(req)
	if !resp.OK {
		r.logger.Warn("request failed",
			zap.String("channel", req.Channel),
			zap.String("correlation_id", req.CorrelationID),
			zap.String("code", string(resp.Error.Code)),
		)
	}
	return resp
}

func (r *Router) route(req types.Request) types.Response {
	switch req.Channel {
	case types.ChannelWorkspaceCreate:
		return r.workspaceCreate(req)
	case types.ChannelWorkspaceList:
		return r.workspaceList(req)
	case types.ChannelWorkspaceUpdate:
		return r.workspaceUpdate(req)
	case types.ChannelWorkspaceDelete:
		return r.workspaceDelete(req)
	case types.ChannelWorkspaceActivate:
		return r.workspaceActivate(req)
	case types.ChannelTabCreate:
		return r.tabCreate(req)
	case types.ChannelTabClose:
		return r.tabClose(req)
	case types.ChannelTabActivate:
		return r.tabActivate(req)
	case types.ChannelTabNavigate:
		return r.tabNavigate(req)
	case types.ChannelTabReorder:
		return r.tabReorder(req)
	case types.ChannelTabList:
		return r.tabList(req)
	case types.ChannelBookmarkList:
		return r.bookmarkList(req)
	case types.ChannelBookmarkAdd:
		return r.bookmarkAdd(req)
	case types.ChannelBookmarkRemove:
		return r.bookmarkRemove(req)
	case types.ChannelUISetTopbarHeight:
		return r.setTopbarHeight(req)
	case types.ChannelUISetContentBounds:
		return r.setContentBounds(req)
	default:
		return fail(req, types.CodeValidation, fmt.Sprintf("unknown channel %q", req.Channel))
	}
}

func (r *Router) workspaceCreate(req types.Request) types.Response {
	var p types.CreateWorkspacePayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}

	p.Name = strings.TrimSpace(p.Name)
	if err := utils.ValidateString(p.Name, "name", 1, utils.MaxNameLength, true); err != nil {
		return fail(req, types.CodeValidation, err.Error())
	}
	if resp, ok := r.validateHints(req, p.Icon, p.Color); !ok {
		return resp
	}

	ws, err := r.registry.Create(types.WorkspaceConfig{
		Name:     p.Name,
		Icon:     p.Icon,
		Color:    p.Color,
		Settings: p.Settings,
	})
	if err != nil {
		return internal(req, err)
	}
	return ok(req, ws)
}

func (r *Router) workspaceList(req types.Request) types.Response {
	list, err := r.registry.List()
	if err != nil {
		return internal(req, err)
	}
	if list == nil {
		list = []*types.Workspace{}
	}
	return ok(req, list)
}

func (r *Router) workspaceUpdate(req types.Request) types.Response {
	var p types.UpdateWorkspacePayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}

	p.ID = strings.TrimSpace(p.ID)
	if err := utils.ValidateID(p.ID, "id", true); err != nil {
		return fail(req, types.CodeValidation, err.Error())
	}
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		if err := utils.ValidateString(trimmed, "name", 1, utils.MaxNameLength, true); err != nil {
			return fail(req, types.CodeValidation, err.Error())
		}
		p.Name = &trimmed
	}
	if resp, ok := r.validateHints(req, p.Icon, p.Color); !ok {
		return resp
	}

	ws, err := r.registry.Update(p.ID, types.WorkspaceUpdate{
		Name:     p.Name,
		Icon:     p.Icon,
		Color:    p.Color,
		Settings: p.Settings,
	})
	if errors.Is(err, workspace.ErrNotFound) {
		return fail(req, types.CodeNotFound, fmt.Sprintf("workspace %s not found", p.ID))
	}
	if err != nil {
		return internal(req, err)
	}
	return ok(req, ws)
}

// workspaceDelete destroys the views of the workspace's tabs before the
// cascade removes the tab records, so no view outlives its logical tab.
func (r *Router) workspaceDelete(req types.Request) types.Response {
	var p types.WorkspaceIDPayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}

	p.ID = strings.TrimSpace(p.ID)
	if err := utils.ValidateID(p.ID, "id", true); err != nil {
		return fail(req, types.CodeValidation, err.Error())
	}

	tabs, err := r.cache.TabsFor(p.ID)
	if err != nil {
		return internal(req, err)
	}
	for _, t := range tabs {
		r.pool.Destroy(t.ID)
	}
	r.cache.Evict(p.ID)

	if err := r.registry.Delete(p.ID); err != nil {
		return internal(req, err)
	}
	return ok(req, map[string]bool{"deleted": true})
}

func (r *Router) workspaceActivate(req types.Request) types.Response {
	var p types.WorkspaceIDPayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}

	p.ID = strings.TrimSpace(p.ID)
	if err := utils.ValidateID(p.ID, "id", true); err != nil {
		return fail(req, types.CodeValidation, err.Error())
	}

	ws, err := r.registry.Activate(p.ID)
	if errors.Is(err, workspace.ErrNotFound) {
		return fail(req, types.CodeNotFound, fmt.Sprintf("workspace %s not found", p.ID))
	}
	if err != nil {
		return internal(req, err)
	}
	return ok(req, ws)
}

func (r *Router) tabCreate(req types.Request) types.Response {
	var p types.CreateTabPayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}

	p.URL = strings.TrimSpace(p.URL)
	if err := utils.ValidateURL(p.URL, "url"); err != nil {
		return fail(req, types.CodeValidation, err.Error())
	}

	ws, err := r.registry.GetActive()
	if err != nil {
		return internal(req, err)
	}
	if ws == nil {
		return fail(req, types.CodeStateConflict, "no active workspace")
	}

	t, err := r.cache.Create(ws, p.URL)
	if err != nil {
		return internal(req, err)
	}

	// The record is already persisted; a surface failure here leaves the
	// view to be created on first navigation instead.
	if _, err := r.pool.Create(t, ws); err != nil {
		r.logger.Warn("view creation deferred", zap.String("tab_id", t.ID), zap.Error(err))
	}
	return ok(req, t)
}

func (r *Router) tabClose(req types.Request) types.Response {
	var p types.TabIDPayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}

	p.TabID = strings.TrimSpace(p.TabID)
	if err := utils.ValidateID(p.TabID, "tabId", true); err != nil {
		return fail(req, types.CodeValidation, err.Error())
	}

	// View destruction strictly precedes record removal.
	r.pool.Destroy(p.TabID)

	removed, err := r.cache.Close(p.TabID)
	if err != nil {
		return internal(req, err)
	}
	if removed == nil {
		return fail(req, types.CodeNotFound, fmt.Sprintf("tab %s not found", p.TabID))
	}
	return ok(req, map[string]bool{"closed": true})
}

func (r *Router) tabActivate(req types.Request) types.Response {
	var p types.TabIDPayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}

	p.TabID = strings.TrimSpace(p.TabID)
	if err := utils.ValidateID(p.TabID, "tabId", true); err != nil {
		return fail(req, types.CodeValidation, err.Error())
	}

	t, err := r.cache.Activate(p.TabID)
	if err != nil {
		return internal(req, err)
	}
	if t == nil {
		return fail(req, types.CodeNotFound, fmt.Sprintf("tab %s not found", p.TabID))
	}
	return ok(req, t)
}

func (r *Router) tabNavigate(req types.Request) types.Response {
	var p types.NavigateTabPayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}

	p.TabID = strings.TrimSpace(p.TabID)
	p.URL = strings.TrimSpace(p.URL)
	if err := utils.ValidateID(p.TabID, "tabId", true); err != nil {
		return fail(req, types.CodeValidation, err.Error())
	}
	if err := utils.ValidateURL(p.URL, "url"); err != nil {
		return fail(req, types.CodeValidation, err.Error())
	}

	t, err := r.cache.Update(p.TabID, types.TabUpdate{URL: &p.URL})
	if err != nil {
		return internal(req, err)
	}
	if t == nil {
		return fail(req, types.CodeNotFound, fmt.Sprintf("tab %s not found", p.TabID))
	}

	loaded, err := r.pool.Navigate(p.TabID, p.URL)
	if err != nil {
		return internal(req, err)
	}
	if !loaded {
		// View absent: create it now against the owning workspace.
		ws, err := r.registry.Get(t.WorkspaceID)
		if err != nil {
			return internal(req, err)
		}
		if ws == nil {
			return fail(req, types.CodeNotFound, fmt.Sprintf("workspace %s not found", t.WorkspaceID))
		}
		if _, err := r.pool.Create(t, ws); err != nil {
			return internal(req, err)
		}
	}
	return ok(req, map[string]bool{"navigated": true})
}

func (r *Router) tabReorder(req types.Request) types.Response {
	var p types.ReorderTabsPayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}

	p.WorkspaceID = strings.TrimSpace(p.WorkspaceID)
	if err := utils.ValidateID(p.WorkspaceID, "workspaceId", true); err != nil {
		return fail(req, types.CodeValidation, err.Error())
	}
	if err := utils.ValidateIDSlice(p.TabIDs, "tabIds"); err != nil {
		return fail(req, types.CodeValidation, err.Error())
	}

	reordered, err := r.cache.Reorder(p.WorkspaceID, p.TabIDs)
	if err != nil {
		return internal(req, err)
	}
	return ok(req, reordered)
}

func (r *Router) tabList(req types.Request) types.Response {
	var p types.ListTabsPayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}

	p.WorkspaceID = strings.TrimSpace(p.WorkspaceID)
	if err := utils.ValidateID(p.WorkspaceID, "workspaceId", true); err != nil {
		return fail(req, types.CodeValidation, err.Error())
	}

	tabs, err := r.cache.TabsFor(p.WorkspaceID)
	if err != nil {
		return internal(req, err)
	}
	return ok(req, tabs)
}

func (r *Router) bookmarkList(req types.Request) types.Response {
	var p types.BookmarkListPayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}

	p.WorkspaceID = strings.TrimSpace(p.WorkspaceID)
	if err := utils.ValidateID(p.WorkspaceID, "workspaceId", true); err != nil {
		return fail(req, types.CodeValidation, err.Error())
	}

	list, err := r.store.ListBookmarks(p.WorkspaceID)
	if err != nil {
		return internal(req, err)
	}
	return ok(req, list)
}

func (r *Router) bookmarkAdd(req types.Request) types.Response {
	var p types.BookmarkPayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}
	if resp, ok := r.validateBookmark(req, &p); !ok {
		return resp
	}

	list, err := r.store.AddBookmark(p.WorkspaceID, p.URL)
	if err != nil {
		return internal(req, err)
	}
	return ok(req, list)
}

func (r *Router) bookmarkRemove(req types.Request) types.Response {
	var p types.BookmarkPayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}
	if resp, ok := r.validateBookmark(req, &p); !ok {
		return resp
	}

	list, err := r.store.RemoveBookmark(p.WorkspaceID, p.URL)
	if err != nil {
		return internal(req, err)
	}
	return ok(req, list)
}

func (r *Router) setTopbarHeight(req types.Request) types.Response {
	var p types.TopbarHeightPayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}

	height := utils.ClampInt(p.Height, 0, utils.MaxTopbarHeight)
	r.layout.SetTopbarHeight(height)
	return ok(req, map[string]int{"height": height})
}

func (r *Router) setContentBounds(req types.Request) types.Response {
	var p types.ContentBoundsPayload
	if resp, ok := decode(req, &p); !ok {
		return resp
	}

	x := utils.ClampInt(p.X, 0, utils.MaxContentEdge)
	y := utils.ClampInt(p.Y, 0, utils.MaxContentEdge)
	w := utils.ClampInt(p.Width, 0, utils.MaxContentEdge)
	h := utils.ClampInt(p.Height, 0, utils.MaxContentEdge)
	r.layout.SetContentBounds(x, y, w, h)
	return ok(req, map[string]int{"x": x, "y": y, "width": w, "height": h})
}

func (r *Router) validateBookmark(req types.Request, p *types.BookmarkPayload) (types.Response, bool) {
	p.WorkspaceID = strings.TrimSpace(p.WorkspaceID)
	p.URL = strings.TrimSpace(p.URL)
	if err := utils.ValidateID(p.WorkspaceID, "workspaceId", true); err != nil {
		return fail(req, types.CodeValidation, err.Error()), false
	}
	if err := utils.ValidateURL(p.URL, "url"); err != nil {
		return fail(req, types.CodeValidation, err.Error()), false
	}
	return types.Response{}, true
}

func (r *Router) validateHints(req types.Request, icon, color *string) (types.Response, bool) {
	if icon != nil {
		if err := utils.ValidateString(strings.TrimSpace(*icon), "icon", 1, utils.MaxIconLength, false); err != nil {
			return fail(req, types.CodeValidation, err.Error()), false
		}
	}
	if color != nil {
		if err := utils.ValidateString(strings.TrimSpace(*color), "color", 1, utils.MaxColorLength, false); err != nil {
			return fail(req, types.CodeValidation, err.Error()), false
		}
	}
	return types.Response{}, true
}

func decode(req types.Request, out interface{}) (types.Response, bool) {
	if len(req.Payload) == 0 {
		// Channels with no required fields accept an omitted payload.
		return types.Response{}, true
	}
	dec := json.NewDecoder(strings.NewReader(string(req.Payload)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fail(req, types.CodeValidation, fmt.Sprintf("malformed payload: %v", err)), false
	}
	return types.Response{}, true
}

func ok(req types.Request, data interface{}) types.Response {
	return types.Response{OK: true, Data: data, CorrelationID: req.CorrelationID}
}

func fail(req types.Request, code types.ErrorCode, msg string) types.Response {
	return types.Response{
		OK:            false,
		Error:         &types.Error{Code: code, Message: msg},
		CorrelationID: req.CorrelationID,
	}
}

func internal(req types.Request, err error) types.Response {
	return fail(req, types.CodeInternal, err.Error())
}
