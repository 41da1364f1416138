package models

// Catalog types follow the Xtream Codes player API wire format, which is why
// their JSON tags are snake_case unlike the rest of the models.

// CatalogKind selects which half of the catalog a request addresses.
type CatalogKind string

const (
	KindLive   CatalogKind = "live"
	KindVod    CatalogKind = "vod"
	KindSeries CatalogKind = "series"
)

// Category is one browsable grouping of streams.
type Category struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	ParentID     int    `json:"parent_id"`
}

// LiveStream is a live TV channel entry.
type LiveStream struct {
	Num          int    `json:"num"`
	Name         string `json:"name"`
	StreamType   string `json:"stream_type"`
	StreamID     int    `json:"stream_id"`
	StreamIcon   string `json:"stream_icon"`
	EPGChannelID string `json:"epg_channel_id"`
	CategoryID   string `json:"category_id"`
	TVArchive    int    `json:"tv_archive"`
	DirectSource string `json:"direct_source"`
}

// VodStream is a movie entry.
type VodStream struct {
	Num                int      `json:"num"`
	Name               string   `json:"name"`
	StreamType         string   `json:"stream_type"`
	StreamID           int      `json:"stream_id"`
	StreamIcon         string   `json:"stream_icon"`
	Rating             string   `json:"rating"`
	AgeRating          string   `json:"ageRating,omitempty"` // e.g. "L", "10", "12", "14", "16", "18"
	CategoryID         string   `json:"category_id"`
	ContainerExtension string   `json:"container_extension"`
	DirectSource       string   `json:"direct_source"`
	BackdropPath       []string `json:"backdrop_path,omitempty"`
	Year               string   `json:"year,omitempty"`
	Duration           string   `json:"duration,omitempty"`
	Plot               string   `json:"plot,omitempty"`
	Director           string   `json:"director,omitempty"`
	Genre              string   `json:"genre,omitempty"`
}

// Series is a series-level catalog entry; episodes live behind SeriesInfo.
type Series struct {
	Num            int      `json:"num"`
	Name           string   `json:"name"`
	SeriesID       int      `json:"series_id"`
	Cover          string   `json:"cover"`
	Plot           string   `json:"plot,omitempty"`
	Cast           string   `json:"cast,omitempty"`
	Director       string   `json:"director,omitempty"`
	Genre          string   `json:"genre,omitempty"`
	ReleaseDate    string   `json:"releaseDate,omitempty"`
	Rating         string   `json:"rating,omitempty"`
	AgeRating      string   `json:"ageRating,omitempty"`
	BackdropPath   []string `json:"backdrop_path,omitempty"`
	EpisodeRunTime string   `json:"episode_run_time,omitempty"`
	CategoryID     string   `json:"category_id"`
}

// Season groups episodes within a series.
type Season struct {
	AirDate      string `json:"air_date,omitempty"`
	EpisodeCount int    `json:"episode_count"`
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Overview     string `json:"overview,omitempty"`
	SeasonNumber int    `json:"season_number"`
	Cover        string `json:"cover,omitempty"`
}

// Episode is the unit progress is tracked against for series content.
type Episode struct {
	ID                 string      `json:"id"`
	EpisodeNum         int         `json:"episode_num"`
	Title              string      `json:"title"`
	ContainerExtension string      `json:"container_extension"`
	Info               EpisodeInfo `json:"info"`
}

// EpisodeInfo carries per-episode display metadata.
type EpisodeInfo struct {
	Plot       string `json:"plot,omitempty"`
	Duration   string `json:"duration,omitempty"`
	MovieImage string `json:"movie_image,omitempty"`
}

// SeriesInfo is the per-series detail payload: seasons plus episodes keyed
// by season number.
type SeriesInfo struct {
	Seasons  []Season             `json:"seasons"`
	Episodes map[string][]Episode `json:"episodes"`
}

// LoginResponse mirrors the upstream account handshake.
type LoginResponse struct {
	UserInfo   LoginUserInfo   `json:"user_info"`
	ServerInfo LoginServerInfo `json:"server_info"`
}

type LoginUserInfo struct {
	Username       string `json:"username"`
	Status         string `json:"status"`
	ExpDate        string `json:"exp_date"`
	MaxConnections string `json:"max_connections"`
}

type LoginServerInfo struct {
	URL            string `json:"url"`
	Port           string `json:"port"`
	ServerProtocol string `json:"server_protocol"`
}
