package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/enki/internal/model"
	"github.com/Taichi-iskw/enki/internal/service/media"
)

// mediaCmd represents the media command
var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Media catalog operations",
	Long:  `Create and list chapters, literary works, movies, videos and video games.`,
}

// mediaCreateCmd creates one media item from a JSON file
var mediaCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a media item",
	Long: `Create a media item from a JSON body such as
  {"category":"video","link":"https://youtu.be/dQw4w9WgXcQ"}
An optional image file is uploaded to object storage first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		imagePath, _ := cmd.Flags().GetString("image")
		noCheck, _ := cmd.Flags().GetBool("no-check")

		body, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		req, err := media.DecodeCreateRequest(body)
		if err != nil {
			return err
		}
		req.NoCheck = req.NoCheck || noCheck

		if imagePath != "" {
			content, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("failed to read image %s: %w", imagePath, err)
			}
			req.Image = &media.Image{Content: content, ContentType: http.DetectContentType(content)}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.media.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to create media: %w", err)
		}

		fmt.Println(id)
		return nil
	},
}

// mediaListCmd lists media items
var mediaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List media items",
	Long: `List media items newest first. Without --detailed, items of every category are
returned in their shallow form; --detailed (or --id with --category) returns full rows.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		ids, _ := cmd.Flags().GetStringSlice("id")
		title, _ := cmd.Flags().GetString("title")
		detailed, _ := cmd.Flags().GetBool("detailed")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.media.List(ctx, media.ListRequest{
			Category: model.Category(category),
			IDs:      ids,
			Title:    title,
			Detailed: detailed,
		})
		if err != nil {
			return fmt.Errorf("failed to list media: %w", err)
		}

		if len(items) == 0 {
			fmt.Println("No media found.")
			return nil
		}

		result, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format result: %w", err)
		}

		fmt.Printf("Found %d item(s):\n%s\n", len(items), string(result))
		return nil
	},
}

func init() {
	mediaCreateCmd.Flags().StringP("file", "f", "", "Path to the JSON request body")
	mediaCreateCmd.Flags().String("image", "", "Path to an image to upload")
	mediaCreateCmd.Flags().Bool("no-check", false, "Skip the duplicate check")
	_ = mediaCreateCmd.MarkFlagRequired("file")

	mediaListCmd.Flags().StringP("category", "c", "", "Restrict to one category")
	mediaListCmd.Flags().StringSlice("id", nil, "Restrict to these media IDs (repeatable)")
	mediaListCmd.Flags().StringP("title", "t", "", "Case-insensitive title substring")
	mediaListCmd.Flags().Bool("detailed", false, "Return category-specific rows (requires --category)")

	mediaCmd.AddCommand(mediaCreateCmd)
	mediaCmd.AddCommand(mediaListCmd)
	rootCmd.AddCommand(mediaCmd)
}
