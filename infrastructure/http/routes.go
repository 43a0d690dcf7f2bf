package http

import (
	"dispatchboard/frontend/dashboard"
	"dispatchboard/frontend/exports"
)

// RegisterBoardRoutes registers the dashboard page, the JSON endpoints its
// script polls and the PDF export.
func (s *Server) RegisterBoardRoutes() {
	page := dashboard.PageQueryHandler(s.Orchestrator, s.API, s.FactoryCode)
	s.router.Get("/", page)
	s.router.Get("/board", page)

	s.router.Get("/api/board/snapshot", dashboard.SnapshotQueryHandler(s.Orchestrator))
	s.router.Get("/api/board/trend", dashboard.TrendQueryHandler(s.Trend, s.TrendPoints))
	s.router.Post("/api/board/refresh", dashboard.RefreshCommandHandler(s.Orchestrator))
	s.router.Post("/api/board/scroll", dashboard.ScrollReportCommandHandler(s.Orchestrator))

	s.router.Get("/board/export.pdf", exports.ReportQueryHandler(s.Orchestrator))
}
