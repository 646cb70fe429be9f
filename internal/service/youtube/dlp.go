package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/Taichi-iskw/enki/internal/errors"
	"github.com/Taichi-iskw/enki/internal/model"
	"github.com/Taichi-iskw/enki/internal/service/common"
)

// ytDlpVideoInfo represents yt-dlp JSON output structure for video info
type ytDlpVideoInfo struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	UploadDate string  `json:"upload_date"` // YYYYMMDD
	Timestamp  *int64  `json:"timestamp"`
	Channel    string  `json:"channel"`
	ChannelID  string  `json:"channel_id"`
	ChannelURL string  `json:"channel_url"`
	UploaderID string  `json:"uploader_id"` // "@handle" when the channel has one
}

// DLPSource reads metadata by shelling out to yt-dlp
type DLPSource struct {
	cmdRunner common.CmdRunner
}

// NewDLPSource creates a Source backed by the yt-dlp binary
func NewDLPSource() *DLPSource {
	return NewDLPSourceWithCmdRunner(common.NewCmdRunner())
}

// NewDLPSourceWithCmdRunner creates a DLPSource with custom CmdRunner (for testing)
func NewDLPSourceWithCmdRunner(cmdRunner common.CmdRunner) *DLPSource {
	return &DLPSource{cmdRunner: cmdRunner}
}

// FetchVideo fetches a single video's metadata with yt-dlp
func (s *DLPSource) FetchVideo(ctx context.Context, videoID string) (*model.VideoMetadata, error) {
	if videoID == "" {
		return nil, errors.New(errors.CodeInvalidArg, "video ID is required")
	}

	info, err := s.dump(ctx, "--no-playlist", "https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errors.New(errors.CodeExternal, "no item for key "+videoID)
	}

	return &model.VideoMetadata{
		ID:                info.ID,
		Title:             info.Title,
		ChannelExternalID: info.ChannelID,
		Duration:          strconv.FormatFloat(info.Duration, 'f', -1, 64),
		PublishedAt:       publishedAt(info),
	}, nil
}

// FetchChannel fetches channel information from the channel's first upload
func (s *DLPSource) FetchChannel(ctx context.Context, externalID string) (*model.ChannelMetadata, error) {
	if externalID == "" {
		return nil, errors.New(errors.CodeInvalidArg, "channel ID is required")
	}

	info, err := s.dump(ctx,
		"--playlist-items", "1", // Get only first video to extract channel info
		"https://www.youtube.com/channel/"+externalID,
	)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errors.New(errors.CodeExternal, "no item for key "+externalID)
	}

	customURL := ""
	if strings.HasPrefix(info.UploaderID, "@") {
		customURL = info.UploaderID
	}

	return &model.ChannelMetadata{
		ExternalID: externalID,
		Name:       info.Channel,
		URL:        channelURL(customURL, externalID),
	}, nil
}

// dump runs yt-dlp --dump-json and decodes the first object; nil when there is none
func (s *DLPSource) dump(ctx context.Context, args ...string) (*ytDlpVideoInfo, error) {
	args = append([]string{"--dump-json", "--skip-download"}, args...)

	output, err := s.cmdRunner.Run(ctx, "yt-dlp", args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to fetch metadata with yt-dlp")
	}

	// yt-dlp outputs one JSON object per line
	line, _, _ := bytes.Cut(bytes.TrimSpace(output), []byte("\n"))
	if len(line) == 0 {
		return nil, nil
	}

	var info ytDlpVideoInfo
	if err := json.Unmarshal(line, &info); err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to parse yt-dlp output")
	}
	return &info, nil
}

func publishedAt(info *ytDlpVideoInfo) string {
	if info.Timestamp != nil {
		return time.Unix(*info.Timestamp, 0).UTC().Format(time.RFC3339)
	}
	if t, err := time.Parse("20060102", info.UploadDate); err == nil {
		return t.Format(time.RFC3339)
	}
	return ""
}
