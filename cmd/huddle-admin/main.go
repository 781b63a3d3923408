package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/huddlechat/huddle/config"
	"github.com/huddlechat/huddle/globals"
	"github.com/huddlechat/huddle/persistence"
	"github.com/huddlechat/huddle/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// A very simple CLI tool for the administration of the user and group
// snapshots.

var configPath = pflag.StringP("config", "c", "", "path to config file or directory")

func main() {
	flagSet := config.GetFlagSet()
	pflag.CommandLine.AddFlagSet(flagSet)
	pflag.Parse()

	globalConfig, err := config.ReadConfiguration(*configPath, flagSet)
	if err != nil {
		panic(err)
	}
	if globalConfig.LogLevel != "" {
		globals.AppLogger.SetLevel(hclog.LevelFromString(globalConfig.LogLevel))
	}

	backend, err := persistence.NewBackend(globalConfig)
	if err != nil {
		panic(err)
	}
	defer backend.Close()

	users, err := persistence.LoadUsers(backend)
	if err != nil {
		panic(err)
	}
	groups, err := persistence.LoadGroups(backend)
	if err != nil {
		panic(err)
	}

	var cmdShow = &cobra.Command{
		Use:   "show",
		Short: "Show user or group",
		Long:  `show is for printing user or group information with a given user/group id.`,
	}
	var cmdShowUsers = &cobra.Command{
		Use:   "users",
		Short: "Show users",
		Long:  `shows a listing of all users.`,
		Run: func(cmd *cobra.Command, args []string) {
			printJSON(users.List())
		},
	}
	var cmdShowUser = &cobra.Command{
		Use:   "user [user id]",
		Short: "Show user",
		Long:  `show user prints detail information about the user with the given id.`,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			user, err := users.Get(args[0])
			if err != nil {
				globals.AppLogger.Error("could not get user", "error", err)
				return
			}
			printJSON(user)
		},
	}
	var cmdShowGroups = &cobra.Command{
		Use:   "groups",
		Short: "Show groups",
		Long:  `shows a listing of all groups.`,
		Run: func(cmd *cobra.Command, args []string) {
			printJSON(groups.List())
		},
	}
	var cmdShowGroup = &cobra.Command{
		Use:   "group [group id]",
		Short: "Show group",
		Long:  `show group prints detail information about the group with the given id.`,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			group, err := groups.Get(args[0])
			if err != nil {
				globals.AppLogger.Error("could not get group", "error", err)
				return
			}
			printJSON(group)
		},
	}
	var cmdDelete = &cobra.Command{
		Use:   "delete",
		Short: "delete user or group",
		Long:  `delete removes the user or group with a given user/group id.`,
	}
	var cmdDeleteUser = &cobra.Command{
		Use:   "user [user id]",
		Short: "Delete user",
		Long:  `delete user removes the user with the given id.`,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := users.Delete(args[0]); err != nil {
				globals.AppLogger.Error("could not delete user", "error", err)
			}
		},
	}
	var cmdDeleteGroup = &cobra.Command{
		Use:   "group [group id]",
		Short: "Delete group",
		Long:  `delete group removes the group with the given id.`,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := groups.Delete(args[0]); err != nil {
				globals.AppLogger.Error("could not delete group", "error", err)
			}
		},
	}
	var cmdSet = &cobra.Command{
		Use:   "set",
		Short: "create/update user or group",
		Long:  `set creates or updates a user or group.`,
	}
	var cmdSetUser = &cobra.Command{
		Use:   "user [user definition]",
		Short: "Set user",
		Long:  `set user creates or updates a user with the given definition. If the user definition is "-", it is read from STDIN.`,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			user := types.User{}
			if err := decodeArg(args[0], &user); err != nil {
				globals.AppLogger.Error("could not decode user", "error", err)
				return
			}
			if user.Id == "" {
				globals.AppLogger.Error("no user id")
				return
			}
			if existing, err := users.Get(user.Id); err == nil {
				*existing = user
				err = users.Save()
			} else {
				err = users.Add(&user)
			}
			if err != nil {
				globals.AppLogger.Error("could not store user", "error", err)
			}
		},
	}
	var cmdSetGroup = &cobra.Command{
		Use:   "group [group definition]",
		Short: "Set group",
		Long:  `set group creates or updates a group. If the group definition is "-", the definition is read from STDIN.`,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			group := types.Group{}
			if err := decodeArg(args[0], &group); err != nil {
				globals.AppLogger.Error("could not decode group", "error", err)
				return
			}
			if group.Id == "" {
				globals.AppLogger.Error("no group id")
				return
			}
			if group.AdminId == "" {
				globals.AppLogger.Warn("no admin set")
			}
			if existing, err := groups.Get(group.Id); err == nil {
				*existing = group
				err = groups.Save()
			} else {
				err = groups.Add(&group)
			}
			if err != nil {
				globals.AppLogger.Error("could not store group", "error", err)
			}
		},
	}
	var rootCmd = &cobra.Command{Use: "huddle-admin"}
	rootCmd.AddCommand(cmdShow, cmdDelete, cmdSet)
	cmdShow.AddCommand(cmdShowUsers, cmdShowUser, cmdShowGroups, cmdShowGroup)
	cmdDelete.AddCommand(cmdDeleteUser, cmdDeleteGroup)
	cmdSet.AddCommand(cmdSetUser, cmdSetGroup)
	rootCmd.Execute()
}

func printJSON(v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		globals.AppLogger.Error("could not marshal", "error", err)
		return
	}
	fmt.Println(string(raw))
}

func decodeArg(arg string, into interface{}) error {
	var r io.Reader
	if arg == "-" {
		r = os.Stdin
	} else {
		r = bytes.NewReader([]byte(arg))
	}
	return json.NewDecoder(r).Decode(into)
}
