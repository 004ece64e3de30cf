package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"story_client/internal/cli/colours"
	"story_client/internal/domain"
	"story_client/internal/service"
)

// App is the command-line front end over the story and user services.
type App struct {
	stories *service.StoryService
	users   *service.UserService
	logger  *slog.Logger

	configPath string
	wire       Wire
	closers    []func()
}

// Services is what a Wire call hands back to the App.
type Services struct {
	Stories *service.StoryService
	Users   *service.UserService
	Logger  *slog.Logger
	Close   func()
}

// Wire builds the services from the config file named by --config.
type Wire func(ctx context.Context, configPath string) (*Services, error)

func NewApp(stories *service.StoryService, users *service.UserService, logger *slog.Logger) *App {
	return &App{
		stories: stories,
		users:   users,
		logger:  logger,
	}
}

// NewConfiguredApp defers wiring until flags are parsed, so --config can
// override defaultConfig.
func NewConfiguredApp(defaultConfig string, wire Wire) *App {
	return &App{
		configPath: defaultConfig,
		wire:       wire,
	}
}

// Close releases whatever the Wire call opened.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if a.wire == nil {
		return nil
	}

	svc, err := a.wire(cmd.Context(), a.configPath)
	if err != nil {
		return err
	}

	a.stories = svc.Stories
	a.users = svc.Users
	a.logger = svc.Logger
	if svc.Close != nil {
		a.closers = append(a.closers, svc.Close)
	}
	return nil
}

// Command builds the root command with every subcommand attached.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "storyctl",
		Short:         "Browse, post and favorite stories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", a.configPath, "path to config file")
	root.PersistentPreRunE = a.setup

	root.AddCommand(
		a.storiesCmd(),
		a.signupCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.postCmd(),
		a.deleteCmd(),
		a.favoriteCmd(),
		a.unfavoriteCmd(),
		a.favoritesCmd(),
		a.mineCmd(),
	)

	return root
}

func (a *App) storiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stories",
		Short: "List the feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list, err := a.stories.GetStories(ctx)
			if err != nil {
				return err
			}
			user := a.users.RestoreSession(ctx)
			printStories(cmd.OutOrStdout(), list.Stories, user)
			return nil
		},
	}
}

func (a *App) signupCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "signup <username> <name>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.users.Signup(cmd.Context(), args[0], password, args[1])
			if err != nil {
				return err
			}
			colours.Success.Fprintf(cmd.OutOrStdout(), "Welcome, %s!\n", user.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.users.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			colours.Success.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the remembered session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.users.Logout(cmd.Context(), nil); err != nil {
				return err
			}
			colours.Info.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the remembered user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colours.Title.Fprintf(out, "%s", user.Username)
			fmt.Fprintf(out, " (%s) since %s\n", user.Name, user.CreatedAt.Format("2006-01-02"))
			fmt.Fprintf(out, "  %d stories, %d favorites\n", len(user.OwnStories), len(user.Favorites))
			return nil
		},
	}
}

func (a *App) postCmd() *cobra.Command {
	var input domain.NewStory
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Submit a new story",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := a.session(ctx)
			if err != nil {
				return err
			}
			story, err := a.stories.AddStory(ctx, nil, user, input)
			if err != nil {
				return err
			}
			colours.Success.Fprintf(cmd.OutOrStdout(), "Posted %s\n", story.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Title, "title", "", "story title")
	cmd.Flags().StringVar(&input.Author, "author", "", "story author")
	cmd.Flags().StringVar(&input.URL, "url", "", "story url")
	for _, name := range []string{"title", "author", "url"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <story-id>",
		Short: "Delete one of your stories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, err := a.session(ctx)
			if err != nil {
				return err
			}
			if err := a.stories.RemoveStory(ctx, nil, user, args[0]); err != nil {
				return err
			}
			colours.Success.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func (a *App) favoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <story-id>",
		Short: "Add a story to your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.toggleFavorite(cmd, args[0], true)
		},
	}
}

func (a *App) unfavoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unfavorite <story-id>",
		Short: "Remove a story from your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.toggleFavorite(cmd, args[0], false)
		},
	}
}

func (a *App) favoritesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorites",
		Short: "List your favorite stories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			printStories(cmd.OutOrStdout(), user.Favorites, user)
			return nil
		},
	}
}

func (a *App) mineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List the stories you posted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			printStories(cmd.OutOrStdout(), user.OwnStories, user)
			return nil
		},
	}
}

func (a *App) toggleFavorite(cmd *cobra.Command, storyID string, add bool) error {
	ctx := cmd.Context()
	user, err := a.session(ctx)
	if err != nil {
		return err
	}

	story, err := a.lookup(ctx, user, storyID)
	if err != nil {
		return err
	}

	var toggle *domain.FavoriteToggle
	if add {
		toggle, err = a.users.AddFavorite(ctx, user, story)
	} else {
		toggle, err = a.users.RemoveFavorite(ctx, user, story)
	}
	if err != nil {
		toggle.Revert(user)
		a.logger.Debug("reverted local favorite change", "story_id", storyID)
		return err
	}

	verb := "Unfavorited"
	if add {
		verb = "Favorited"
	}
	colours.Success.Fprintf(cmd.OutOrStdout(), "%s %q\n", verb, story.Title)
	return nil
}

// lookup finds a story among the user's favorites first, then in the feed.
func (a *App) lookup(ctx context.Context, user *domain.User, storyID string) (domain.Story, error) {
	for _, s := range user.Favorites {
		if s.ID == storyID {
			return s, nil
		}
	}

	list, err := a.stories.GetStories(ctx)
	if err != nil {
		return domain.Story{}, err
	}
	if story, ok := list.Find(storyID); ok {
		return story, nil
	}
	return domain.Story{}, fmt.Errorf("story %s: %w", storyID, domain.ErrNotFound)
}

func (a *App) session(ctx context.Context) (*domain.User, error) {
	user := a.users.RestoreSession(ctx)
	if user == nil {
		return nil, errors.New("not logged in, run `storyctl login` first")
	}
	return user, nil
}

func printStories(out io.Writer, stories []domain.Story, user *domain.User) {
	if len(stories) == 0 {
		colours.Warning.Fprintln(out, "No stories yet.")
		return
	}

	for _, s := range stories {
		if user != nil && user.IsFavorite(s) {
			colours.Star.Fprint(out, "★ ")
		} else {
			fmt.Fprint(out, "  ")
		}
		colours.Title.Fprint(out, s.Title)
		if host, err := s.HostName(); err == nil {
			colours.Host.Fprintf(out, " (%s)", host)
		}
		fmt.Fprint(out, " by ")
		colours.Author.Fprint(out, s.Author)
		fmt.Fprintf(out, "\n    posted by %s, id %s\n", s.Username, s.ID)
	}
}
