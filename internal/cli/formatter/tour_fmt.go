package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/panotour/internal/authoring"
	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/alexanderramin/panotour/internal/repository"
)

// FormatTourList renders stored tours as a table.
func FormatTourList(tours []repository.TourSummary) string {
	if len(tours) == 0 {
		return Dim("No tours yet. Create one with: panotour tour new \"My tour\"") + "\n"
	}
	rows := make([][]string, 0, len(tours))
	for _, t := range tours {
		rows = append(rows, []string{
			TruncID(t.ID),
			Bold(t.Title),
			fmt.Sprintf("%d", t.SceneCount),
			fmt.Sprintf("%d", t.HotspotCount),
			Dim(HumanTimestamp(t.UpdatedAt)),
		})
	}
	return RenderTable([]string{"ID", "TITLE", "SCENES", "HOTSPOTS", "UPDATED"}, rows)
}

// FormatTourDetail renders a tour as a tree of scenes and hotspots, with
// usage against the policy's limits.
func FormatTourDetail(t *domain.Tour, p limits.Policy) string {
	var b strings.Builder
	b.WriteString(Header(t.Title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", Dim("id:"), t.ID)
	if t.Description != "" {
		fmt.Fprintf(&b, "%s\n", t.Description)
	}
	fmt.Fprintf(&b, "%s %s\n", Dim("scenes:"), UsageBar(len(t.Scenes), p.MaxScenesPerTour, 10))
	autorotate := "off"
	if t.Settings.Autorotate.Enabled {
		autorotate = fmt.Sprintf("on (%g°/s)", t.Settings.Autorotate.Speed)
	}
	fmt.Fprintf(&b, "%s %s\n", Dim("autorotate:"), autorotate)

	start := t.StartScene()
	for i, s := range t.Scenes {
		b.WriteString("\n")
		marker := "  "
		if start != nil && start.ID == s.ID {
			marker = StyleGreen.Render("▶ ")
		}
		fmt.Fprintf(&b, "%s%d. %s %s\n", marker, i+1, Bold(s.Title), Dim("("+s.ID+")"))
		image := s.Image
		if image == "" {
			image = StyleYellow.Render("no image")
		}
		fmt.Fprintf(&b, "     %s\n", Dim(image))
		fmt.Fprintf(&b, "     %s\n", Dim(FormatView(s.InitialView)))
		fmt.Fprintf(&b, "     %s %s\n", Dim("hotspots:"), UsageBar(len(s.Hotspots), p.MaxHotspotsPerScene, 10))
		for j, h := range s.Hotspots {
			branch := "├─"
			if j == len(s.Hotspots)-1 {
				branch = "└─"
			}
			fmt.Fprintf(&b, "     %s %s %s %s  %s\n", Dim(branch), TypeBadge(h.Type()), h.Title, Dim("("+h.ID+")"), hotspotDetail(h))
		}
	}
	return b.String()
}

func hotspotDetail(h domain.Hotspot) string {
	switch p := h.Payload.(type) {
	case domain.ScenePayload:
		return Dim("→ " + p.TargetSceneID)
	case domain.LinkPayload:
		return Dim(p.URL)
	case domain.VideoPayload:
		return Dim(p.URL)
	case domain.InfoPayload:
		return Dim(truncate(p.Text, 40))
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// FormatDeleteReport summarizes what removing a scene took with it.
func FormatDeleteReport(r authoring.DeleteReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Removed scene %s\n", Bold(r.SceneID))
	for _, ref := range r.RemovedHotspots {
		fmt.Fprintf(&b, "  %s hotspot %s in %s\n", Dim("scrubbed"), ref.HotspotID, ref.SceneID)
	}
	if r.InitialSceneCleared {
		b.WriteString(StyleYellow.Render("  initial scene cleared; the first scene is now used") + "\n")
	}
	return b.String()
}

// FormatTiers renders every tier's limits, marking the active one.
func FormatTiers(policies []limits.Policy, current limits.Tier) string {
	rows := make([][]string, 0, len(policies))
	for _, p := range policies {
		name := string(p.Tier)
		if p.Tier == current {
			name = StyleGreen.Render("● " + name)
		} else {
			name = "  " + name
		}
		types := make([]string, len(p.AllowedHotspotTypes))
		for i, t := range p.AllowedHotspotTypes {
			types[i] = string(t)
		}
		rows = append(rows, []string{name, limitText(p.MaxScenesPerTour), limitText(p.MaxHotspotsPerScene), strings.Join(types, ", ")})
	}
	return RenderTable([]string{"TIER", "SCENES", "HOTSPOTS/SCENE", "TYPES"}, rows)
}

func limitText(n int) string {
	if n == limits.Unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", n)
}
