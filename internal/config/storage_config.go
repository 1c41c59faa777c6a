package config

import "os"

const (
	folderVar     = "AUTHDOC_DATA_FOLDER"
	passphraseVar = "AUTHDOC_TOKEN_PASSPHRASE"
)

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetDataFolder() string {
	if folder := os.Getenv(folderVar); folder != "" {
		return folder
	}
	return DefaultDataFolder()
}

// GetTokenPassphrase returns the passphrase protecting the persisted
// credential file. Empty means the file is stored unencrypted.
func (Storage) GetTokenPassphrase() string {
	return os.Getenv(passphraseVar)
}
