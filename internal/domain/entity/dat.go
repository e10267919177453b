package entity

const (
	DefaultDATFileName = "privacy_data.txt"
	DefaultDATReward   = 100
)

type DATMintRequest struct {
	WalletAddress string `json:"walletAddress"`
	PrivacyData   string `json:"privacyData"`
	FileName      string `json:"fileName"`
	RewardAmount  int64  `json:"rewardAmount"`
}

type DATMintResult struct {
	Success bool   `json:"success"`
	FileID  string `json:"fileId"`
	JobID   string `json:"jobId"`
	URL     string `json:"url"`
}
