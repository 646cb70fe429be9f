package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// channelCmd represents the channel command
var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Video channel operations",
	Long:  `Operations for the video channels referenced by catalogued videos.`,
}

// channelResolveCmd finds or creates the channel for an external channel ID
var channelResolveCmd = &cobra.Command{
	Use:   "resolve [EXTERNAL_ID]",
	Short: "Resolve a YouTube channel ID to a catalog channel",
	Long: `Return the catalog ID of the channel with the given YouTube channel ID,
creating it from the metadata source when it is not known yet.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.resolver.ResolveExternal(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve channel: %w", err)
		}

		channel, err := a.channels.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load channel: %w", err)
		}

		result, err := json.MarshalIndent(channel, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Println(string(result))
		return nil
	},
}

// channelListCmd lists all saved channels
var channelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved channels",
	Long:  `List all channels saved in the database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		channels, err := a.channels.List(ctx, limit, offset)
		if err != nil {
			return fmt.Errorf("failed to list channels: %w", err)
		}

		if len(channels) == 0 {
			fmt.Println("No channels found in the database.")
			return nil
		}

		result, err := json.MarshalIndent(channels, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Printf("Found %d channel(s):\n%s\n", len(channels), string(result))
		return nil
	},
}

func init() {
	channelListCmd.Flags().Int("limit", 10, "Maximum number of channels to retrieve")
	channelListCmd.Flags().Int("offset", 0, "Number of channels to skip")

	channelCmd.AddCommand(channelResolveCmd)
	channelCmd.AddCommand(channelListCmd)
	rootCmd.AddCommand(channelCmd)
}
