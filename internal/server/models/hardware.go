package models

// HardwareInfo is the machine fingerprint reported by the launcher.
type HardwareInfo struct {
	Bitness               int    `json:"bitness"`
	TotalMemory           int64  `json:"totalMemory"`
	LogicalProcessors     int    `json:"logicalProcessors"`
	PhysicalProcessors    int    `json:"physicalProcessors"`
	ProcessorMaxFreq      int64  `json:"processorMaxFreq"`
	Battery               bool   `json:"battery"`
	HwDiskID              string `json:"hwDiskId"`
	DisplayID             []byte `json:"displayId"`
	BaseboardSerialNumber string `json:"baseboardSerialNumber"`
	GraphicCard           string `json:"graphicCard"`
}

// HardwareRecord links a public key and fingerprint to a ban flag.
type HardwareRecord struct {
	ID        int64
	Info      HardwareInfo
	PublicKey []byte
	Banned    bool
}
