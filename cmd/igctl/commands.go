// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"code.hybscloud.com/igx"
	"code.hybscloud.com/igx/statestore"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// passwordEnv is read when --password is not given.
const passwordEnv = "IGCTL_PASSWORD"

func (a *app) loginCommand() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login USERNAME",
		Short: "Log in and save the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if password == "" {
				return errors.Errorf("no password: use --password or set %s", passwordEnv)
			}
			return a.run(cmd, func(ctx context.Context, c *igx.Client) (igx.Body, error) {
				return c.Login(ctx, args[0], password)
			})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "account password (default $"+passwordEnv+")")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the remote session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *igx.Client) (igx.Body, error) {
				return c.Logout(ctx)
			})
		},
	}
}

func (a *app) timelineCommand() *cobra.Command {
	var maxID string
	var pages int
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print the home timeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *igx.Client) (igx.Body, error) {
				if pages > 1 {
					return c.TimelinePages(ctx, pages)
				}
				return c.Timeline(ctx, maxID)
			})
		},
	}
	cmd.Flags().StringVar(&maxID, "max-id", "", "page cursor")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to fetch")
	return cmd
}

// userArg parses an optional user id argument; absent means the caller.
func userArg(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	return id, errors.Wrapf(err, "user id %q", args[0])
}

func (a *app) userFeedCommand() *cobra.Command {
	var maxID string
	cmd := &cobra.Command{
		Use:   "user-feed [USER_ID]",
		Short: "Print the media of a user",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := userArg(args)
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, c *igx.Client) (igx.Body, error) {
				return c.UserFeed(ctx, id, maxID)
			})
		},
	}
	cmd.Flags().StringVar(&maxID, "max-id", "", "page cursor")
	return cmd
}

func (a *app) followersCommand() *cobra.Command {
	var maxID string
	var pages int
	cmd := &cobra.Command{
		Use:   "followers [USER_ID]",
		Short: "Print the followers of a user",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := userArg(args)
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, c *igx.Client) (igx.Body, error) {
				if pages > 1 {
					return c.FollowersPages(ctx, id, pages)
				}
				return c.Followers(ctx, id, maxID)
			})
		},
	}
	cmd.Flags().StringVar(&maxID, "max-id", "", "page cursor")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to fetch")
	return cmd
}

func (a *app) searchUsersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search-users QUERY",
		Short: "Search accounts by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *igx.Client) (igx.Body, error) {
				return c.SearchUsers(ctx, args[0])
			})
		},
	}
}

func (a *app) likeCommand() *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "like MEDIA_ID",
		Short: "Like a media",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, c *igx.Client) (igx.Body, error) {
				if undo {
					return c.Unlike(ctx, args[0])
				}
				return c.Like(ctx, args[0])
			})
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "remove the like instead")
	return cmd
}

func (a *app) followCommand() *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "follow USER_ID",
		Short: "Follow a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := userArg(args)
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, c *igx.Client) (igx.Body, error) {
				if undo {
					return c.Unfollow(ctx, id)
				}
				return c.Follow(ctx, id)
			})
		},
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "unfollow instead")
	return cmd
}

func (a *app) stateCommand() *cobra.Command {
	var showSecrets bool
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := statestore.Open(a.statePath, a.log)
			if err != nil {
				return errors.Wrap(err, "opening state")
			}
			defer closeStore()
			seed, err := store.Load(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "loading state")
			}
			st, err := igx.NewState(seed)
			if err != nil {
				return errors.Wrap(err, "restoring session")
			}
			exported := st.Export()
			if !showSecrets {
				if _, ok := exported[igx.KeyPassword]; ok {
					exported[igx.KeyPassword] = "********"
				}
			}
			data, err := json.Marshal(exported)
			if err != nil {
				return errors.WithStack(err)
			}
			return a.print(igx.Body(data))
		},
	}
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print the password too")
	return cmd
}
