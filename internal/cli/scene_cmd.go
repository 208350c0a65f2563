package cli

import (
	"fmt"

	"github.com/alexanderramin/panotour/internal/authoring"
	"github.com/alexanderramin/panotour/internal/cli/formatter"
	"github.com/alexanderramin/panotour/internal/domain"
	"github.com/alexanderramin/panotour/internal/limits"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newSceneCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Manage the scenes of a tour",
	}

	cmd.AddCommand(
		newSceneAddCmd(app),
		newSceneEditCmd(app),
		newSceneRemoveCmd(app),
		newSceneMoveCmd(app),
	)

	return cmd
}

// viewFlags binds --yaw/--pitch/--fov (or a prefixed variant) to a view.
type viewFlags struct {
	prefix string
	view   domain.View
}

func addViewFlags(fs *pflag.FlagSet, prefix, what string) *viewFlags {
	v := &viewFlags{prefix: prefix}
	def := domain.DefaultView()
	fs.Float64Var(&v.view.Yaw, prefix+"yaw", def.Yaw, what+" yaw in degrees")
	fs.Float64Var(&v.view.Pitch, prefix+"pitch", def.Pitch, what+" pitch in degrees")
	fs.Float64Var(&v.view.FOV, prefix+"fov", def.FOV, what+" field of view in degrees")
	return v
}

func (v *viewFlags) changed(fs *pflag.FlagSet) bool {
	return fs.Changed(v.prefix+"yaw") || fs.Changed(v.prefix+"pitch") || fs.Changed(v.prefix+"fov")
}

// merge overlays the flags that were set onto base.
func (v *viewFlags) merge(fs *pflag.FlagSet, base domain.View) domain.View {
	if fs.Changed(v.prefix + "yaw") {
		base.Yaw = v.view.Yaw
	}
	if fs.Changed(v.prefix + "pitch") {
		base.Pitch = v.view.Pitch
	}
	if fs.Changed(v.prefix + "fov") {
		base.FOV = v.view.FOV
	}
	return base
}

func newSceneAddCmd(app *App) *cobra.Command {
	var id, title, image string
	var vf *viewFlags

	cmd := &cobra.Command{
		Use:   "add TOUR",
		Short: "Append a scene to a tour",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := authoring.SceneSpec{ID: id, Title: title, Image: image}
			if vf.changed(cmd.Flags()) {
				v := vf.merge(cmd.Flags(), domain.DefaultView())
				spec.InitialView = &v
			}
			var newID string
			err := editTour(cmd, app, args[0], func(t *domain.Tour, p limits.Policy) (*domain.Tour, error) {
				next, sid, err := authoring.AddScene(t, spec, p)
				newID = sid
				return next, err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added scene %s\n", newID)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Scene id (default: derived from the title)")
	cmd.Flags().StringVar(&title, "title", "", "Scene title")
	cmd.Flags().StringVar(&image, "image", "", "Equirectangular image URL or path")
	vf = addViewFlags(cmd.Flags(), "", "Initial")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newSceneEditCmd(app *App) *cobra.Command {
	var title, image string
	var vf *viewFlags

	cmd := &cobra.Command{
		Use:   "edit TOUR SCENE",
		Short: "Change a scene's title, image or initial view",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			var patch authoring.ScenePatch
			if fs.Changed("title") {
				patch.Title = &title
			}
			if fs.Changed("image") {
				patch.Image = &image
			}
			if patch.Title == nil && patch.Image == nil && !vf.changed(fs) {
				return fmt.Errorf("nothing to change: pass --title, --image, --yaw, --pitch or --fov")
			}
			return editTour(cmd, app, args[0], func(t *domain.Tour, _ limits.Policy) (*domain.Tour, error) {
				if vf.changed(fs) {
					s, _ := t.SceneByID(args[1])
					if s == nil {
						return nil, fmt.Errorf("%w: %q", authoring.ErrSceneNotFound, args[1])
					}
					v := vf.merge(fs, s.InitialView)
					patch.InitialView = &v
				}
				return authoring.EditScene(t, args[1], patch)
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&image, "image", "", "New image")
	vf = addViewFlags(cmd.Flags(), "", "Initial")
	return cmd
}

func newSceneRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove TOUR SCENE",
		Aliases: []string{"rm"},
		Short:   "Remove a scene and every hotspot that leads to it",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var report authoring.DeleteReport
			err := editTour(cmd, app, args[0], func(t *domain.Tour, _ limits.Policy) (*domain.Tour, error) {
				next, r, err := authoring.DeleteScene(t, args[1])
				report = r
				return next, err
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDeleteReport(report))
			return nil
		},
	}
}

func newSceneMoveCmd(app *App) *cobra.Command {
	var to int

	cmd := &cobra.Command{
		Use:   "move TOUR SCENE",
		Short: "Move a scene to another position (1 is first)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if to < 1 {
				return fmt.Errorf("--to must be 1 or greater")
			}
			return editTour(cmd, app, args[0], func(t *domain.Tour, _ limits.Policy) (*domain.Tour, error) {
				return authoring.MoveScene(t, args[1], to-1)
			})
		},
	}

	cmd.Flags().IntVar(&to, "to", 0, "Target position, starting at 1")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
