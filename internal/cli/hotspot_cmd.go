package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/panotour/internal/authoring"
	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newHotspotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hotspot",
		Aliases: []string{"hs"},
		Short:   "Manage the hotspots of a scene",
	}

	cmd.AddCommand(
		newHotspotAddCmd(app),
		newHotspotEditCmd(app),
		newHotspotRetypeCmd(app),
		newHotspotRemoveCmd(app),
		newHotspotMoveCmd(app),
	)

	return cmd
}

// payloadFlags are the type-specific hotspot fields.
type payloadFlags struct {
	text      string
	url       string
	newWindow bool
	target    string
	view      *viewFlags
}

var payloadFlagNames = []string{"text", "url", "new-window", "target", "target-yaw", "target-pitch", "target-fov"}

func addPayloadFlags(fs *pflag.FlagSet) *payloadFlags {
	pf := &payloadFlags{}
	fs.StringVar(&pf.text, "text", "", "Info text (info)")
	fs.StringVar(&pf.url, "url", "", "Absolute URL (link, video)")
	fs.BoolVar(&pf.newWindow, "new-window", false, "Open the link in a new window (link)")
	fs.StringVar(&pf.target, "target", "", "Target scene id (scene)")
	pf.view = addViewFlags(fs, "target-", "Arrival")
	return pf
}

func (pf *payloadFlags) changed(fs *pflag.FlagSet) bool {
	for _, name := range payloadFlagNames {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

// build creates a payload of the named type from the flags.
func (pf *payloadFlags) build(fs *pflag.FlagSet, typ string) (domain.Payload, error) {
	switch domain.HotspotType(strings.ToLower(strings.TrimSpace(typ))) {
	case domain.HotspotInfo:
		return domain.InfoPayload{Text: pf.text}, nil
	case domain.HotspotLink:
		return domain.LinkPayload{URL: pf.url, NewWindow: pf.newWindow}, nil
	case domain.HotspotVideo:
		return domain.VideoPayload{URL: pf.url}, nil
	case domain.HotspotScene:
		p := domain.ScenePayload{TargetSceneID: pf.target}
		if pf.view.changed(fs) {
			v := pf.view.merge(fs, domain.DefaultView())
			p.TargetView = &v
		}
		return p, nil
	case "":
		return nil, authoring.ErrTypeRequired
	default:
		return nil, fmt.Errorf("%w: %q", authoring.ErrUnknownType, typ)
	}
}

// merge overlays the flags that were set onto an existing payload of the
// same type.
func (pf *payloadFlags) merge(fs *pflag.FlagSet, cur domain.Payload) domain.Payload {
	switch p := cur.(type) {
	case domain.InfoPayload:
		if fs.Changed("text") {
			p.Text = pf.text
		}
		return p
	case domain.LinkPayload:
		if fs.Changed("url") {
			p.URL = pf.url
		}
		if fs.Changed("new-window") {
			p.NewWindow = pf.newWindow
		}
		return p
	case domain.VideoPayload:
		if fs.Changed("url") {
			p.URL = pf.url
		}
		return p
	case domain.ScenePayload:
		if fs.Changed("target") {
			p.TargetSceneID = pf.target
		}
		if pf.view.changed(fs) {
			base := domain.DefaultView()
			if p.TargetView != nil {
				base = *p.TargetView
			}
			v := pf.view.merge(fs, base)
			p.TargetView = &v
		}
		return p
	}
	return cur
}

func newHotspotAddCmd(app *App) *cobra.Command {
	var id, typ, title, icon, class string
	var yaw, pitch float64
	var interactive bool
	var pf *payloadFlags

	cmd := &cobra.Command{
		Use:   "add TOUR SCENE",
		Short: "Add a hotspot to a scene",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tourID, err := resolveTourID(ctx, app, args[0])
			if err != nil {
				return err
			}

			var spec authoring.HotspotSpec
			if interactive {
				if !app.IsInteractive() {
					return fmt.Errorf("--interactive needs a terminal")
				}
				t, err := app.Tours.Get(ctx, tourID)
				if err != nil {
					return err
				}
				input := newHotspotInput(t, args[1], app.Tours.Policy())
				if err := hotspotForm(input).RunWithContext(ctx); err != nil {
					return err
				}
				if spec, err = input.spec(); err != nil {
					return err
				}
			} else {
				payload, err := pf.build(cmd.Flags(), typ)
				if err != nil {
					return err
				}
				spec = authoring.HotspotSpec{
					ID: id, Title: title, Yaw: yaw, Pitch: pitch,
					Payload: payload, Icon: icon, CSSClass: class,
				}
			}

			var newID string
			err = editTour(cmd, app, tourID, func(t *domain.Tour, p limits.Policy) (*domain.Tour, error) {
				next, hid, err := authoring.AddHotspot(t, args[1], spec, p)
				newID = hid
				return next, err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added hotspot %s to scene %s\n", newID, args[1])
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&id, "id", "", "Hotspot id (default: generated)")
	fs.StringVar(&typ, "type", "", "info, link, scene or video")
	fs.StringVar(&title, "title", "", "Hotspot label")
	fs.Float64Var(&yaw, "yaw", 0, "Position yaw in degrees")
	fs.Float64Var(&pitch, "pitch", 0, "Position pitch in degrees")
	fs.StringVar(&icon, "icon", "", "Renderer icon hint")
	fs.StringVar(&class, "class", "", "Renderer CSS class hint")
	fs.BoolVarP(&interactive, "interactive", "i", false, "Fill in the hotspot with a form")
	pf = addPayloadFlags(fs)
	return cmd
}

func newHotspotEditCmd(app *App) *cobra.Command {
	var title, icon, class string
	var yaw, pitch float64
	var pf *payloadFlags

	cmd := &cobra.Command{
		Use:   "edit TOUR SCENE HOTSPOT",
		Short: "Change a hotspot without changing its type",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			var patch authoring.HotspotPatch
			if fs.Changed("title") {
				patch.Title = &title
			}
			if fs.Changed("yaw") {
				patch.Yaw = &yaw
			}
			if fs.Changed("pitch") {
				patch.Pitch = &pitch
			}
			if fs.Changed("icon") {
				patch.Icon = &icon
			}
			if fs.Changed("class") {
				patch.CSSClass = &class
			}
			payloadChanged := pf.changed(fs)
			if patch == (authoring.HotspotPatch{}) && !payloadChanged {
				return fmt.Errorf("nothing to change")
			}
			return editTour(cmd, app, args[0], func(t *domain.Tour, p limits.Policy) (*domain.Tour, error) {
				if payloadChanged {
					s, _ := t.SceneByID(args[1])
					if s == nil {
						return nil, fmt.Errorf("%w: %q", authoring.ErrSceneNotFound, args[1])
					}
					h, _ := s.HotspotByID(args[2])
					if h == nil {
						return nil, fmt.Errorf("%w: %q", authoring.ErrHotspotNotFound, args[2])
					}
					patch.Payload = pf.merge(fs, h.Payload)
				}
				return authoring.EditHotspot(t, args[1], args[2], patch, p)
			})
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&title, "title", "", "New label")
	fs.Float64Var(&yaw, "yaw", 0, "New yaw")
	fs.Float64Var(&pitch, "pitch", 0, "New pitch")
	fs.StringVar(&icon, "icon", "", "New icon hint")
	fs.StringVar(&class, "class", "", "New CSS class hint")
	pf = addPayloadFlags(fs)
	return cmd
}

func newHotspotRetypeCmd(app *App) *cobra.Command {
	var typ string
	var pf *payloadFlags

	cmd := &cobra.Command{
		Use:   "retype TOUR SCENE HOTSPOT",
		Short: "Replace a hotspot's type and content",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := pf.build(cmd.Flags(), typ)
			if err != nil {
				return err
			}
			return editTour(cmd, app, args[0], func(t *domain.Tour, p limits.Policy) (*domain.Tour, error) {
				return authoring.ChangeHotspotType(t, args[1], args[2], payload, p)
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "info, link, scene or video")
	pf = addPayloadFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newHotspotRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove TOUR SCENE HOTSPOT",
		Aliases: []string{"rm"},
		Short:   "Remove a hotspot",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editTour(cmd, app, args[0], func(t *domain.Tour, _ limits.Policy) (*domain.Tour, error) {
				return authoring.RemoveHotspot(t, args[1], args[2])
			})
		},
	}
}

func newHotspotMoveCmd(app *App) *cobra.Command {
	var to int

	cmd := &cobra.Command{
		Use:   "move TOUR SCENE HOTSPOT",
		Short: "Move a hotspot to another position (1 is first)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if to < 1 {
				return fmt.Errorf("--to must be 1 or greater")
			}
			return editTour(cmd, app, args[0], func(t *domain.Tour, _ limits.Policy) (*domain.Tour, error) {
				return authoring.MoveHotspot(t, args[1], args[2], to-1)
			})
		},
	}

	cmd.Flags().IntVar(&to, "to", 0, "Target position, starting at 1")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
