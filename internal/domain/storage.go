package domain

// Storage backend discriminators.
const (
	StorageLocal  = "local"
	StorageS3     = "s3"
	StorageWebDAV = "webdav"
	StorageFTP    = "ftp"
)

// StorageConfig selects and configures a storage backend. Only Type is
// inspected by the pipeline; every other field belongs to exactly one
// backend, which validates its own requirements.
type StorageConfig struct {
	Type string `json:"type"`

	// Path is a directory/prefix shared by all remote backends. When the
	// backend's full target (Key / RemotePath) is absent it is derived
	// from Path plus the artifact's filename.
	Path string `json:"path,omitempty"`

	// s3
	Region          string `json:"region,omitempty"`
	Bucket          string `json:"bucket,omitempty"`
	Key             string `json:"key,omitempty"`
	AccessKeyID     string `json:"accessKeyId,omitempty"`
	SecretAccessKey string `json:"secretAccessKey,omitempty"`
	Endpoint        string `json:"endpoint,omitempty"`
	ForcePathStyle  bool   `json:"forcePathStyle,omitempty"`

	// webdav
	URL        string `json:"url,omitempty"`
	Username   string `json:"username,omitempty"`
	RemotePath string `json:"remotePath,omitempty"`

	// ftp
	Host   string `json:"host,omitempty"`
	Port   int    `json:"port,omitempty"`
	User   string `json:"user,omitempty"`
	Secure bool   `json:"secure,omitempty"`

	// webdav + ftp
	Password string `json:"password,omitempty"`
}

// StorageResult is the location descriptor returned by a successful upload.
type StorageResult struct {
	Type     string `json:"type"`
	Location string `json:"location,omitempty"`

	Bucket     string `json:"bucket,omitempty"`
	Key        string `json:"key,omitempty"`
	URL        string `json:"url,omitempty"`
	RemotePath string `json:"remotePath,omitempty"`
	Host       string `json:"host,omitempty"`
	Port       int    `json:"port,omitempty"`

	LocalPath string `json:"localPath,omitempty"`
	Filename  string `json:"filename,omitempty"`
}
