package discovery

import (
	"encoding/json"
	"sync"
)

// ServiceEntry describes one TCP/TLS service observed on a device during
// banner grabbing.
type ServiceEntry struct {
	Port       int    `json:"port"`
	Name       string `json:"name"`
	Banner     string `json:"banner,omitempty"`
	TLS        bool   `json:"tls"`
	TLSVersion string `json:"tls_version,omitempty"`
}

// DeviceInfo is the unified, mutable-during-enrichment device record the
// enrichment pipeline accumulates state onto. One DeviceInfo is created per
// raw protocol record that enrichment is requested for; it is owned by
// exactly one enrichment worker at a time, but every accessor is
// thread-safe so it can also be inspected concurrently by the caller once
// enrichment completes.
//
// All fields are private and reached through thread-safe getters/setters.
// DeviceInfo must always be used as a pointer (*DeviceInfo).
type DeviceInfo struct {
	mu sync.RWMutex

	protocol string
	address  string
	port     int
	rawData  map[string]string

	friendlyName     string
	manufacturer     string
	model            string
	firmwareVersion  string
	serialNumber     string
	deviceURL        string
	deviceCategory   string
	deviceTags       []string
	tagSet           map[string]struct{}
	osGuess          string
	services         []ServiceEntry
	banners          map[string]string
	enrichmentErrors []string
}

// NewDeviceInfo creates a DeviceInfo for the given protocol/address/port,
// seeded with a copy of rawData.
func NewDeviceInfo(protocol, address string, port int, rawData map[string]string) *DeviceInfo {
	d := &DeviceInfo{
		protocol: protocol,
		address:  address,
		port:     port,
		rawData:  make(map[string]string, len(rawData)),
		tagSet:   make(map[string]struct{}),
		banners:  make(map[string]string),
	}
	for k, v := range rawData {
		d.rawData[k] = v
	}
	return d
}

func (d *DeviceInfo) Protocol() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.protocol
}

func (d *DeviceInfo) Address() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.address
}

func (d *DeviceInfo) Port() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.port
}

func (d *DeviceInfo) RawData() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m := make(map[string]string, len(d.rawData))
	for k, v := range d.rawData {
		m[k] = v
	}
	return m
}

func (d *DeviceInfo) FriendlyName() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.friendlyName
}

func (d *DeviceInfo) Manufacturer() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.manufacturer
}

func (d *DeviceInfo) Model() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.model
}

func (d *DeviceInfo) FirmwareVersion() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.firmwareVersion
}

func (d *DeviceInfo) SerialNumber() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.serialNumber
}

func (d *DeviceInfo) DeviceURL() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.deviceURL
}

func (d *DeviceInfo) DeviceCategory() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.deviceCategory
}

func (d *DeviceInfo) DeviceTags() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.deviceTags...)
}

func (d *DeviceInfo) OSGuess() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.osGuess
}

func (d *DeviceInfo) Services() []ServiceEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]ServiceEntry(nil), d.services...)
}

func (d *DeviceInfo) Banners() map[string]string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m := make(map[string]string, len(d.banners))
	for k, v := range d.banners {
		m[k] = v
	}
	return m
}

func (d *DeviceInfo) EnrichmentErrors() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.enrichmentErrors...)
}

// SetFriendlyNameIfEmpty sets friendlyName only if it is currently empty,
// implementing the pipeline's additive-enrichment invariant (a stage may
// fill an empty field but must not clobber one a prior stage already set).
func (d *DeviceInfo) SetFriendlyNameIfEmpty(v string) {
	if v == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.friendlyName == "" {
		d.friendlyName = v
	}
}

// SetFriendlyName overwrites friendlyName unconditionally. Used by stages
// that are explicitly designed to supersede a preliminary value (e.g.
// UPnP-XML deep enrichment superseding a name derived from raw SSDP
// headers).
func (d *DeviceInfo) SetFriendlyName(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.friendlyName = v
}

func (d *DeviceInfo) SetManufacturerIfEmpty(v string) {
	if v == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.manufacturer == "" {
		d.manufacturer = v
	}
}

func (d *DeviceInfo) SetModelIfEmpty(v string) {
	if v == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.model == "" {
		d.model = v
	}
}

func (d *DeviceInfo) SetFirmwareVersionIfEmpty(v string) {
	if v == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.firmwareVersion == "" {
		d.firmwareVersion = v
	}
}

func (d *DeviceInfo) SetSerialNumberIfEmpty(v string) {
	if v == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.serialNumber == "" {
		d.serialNumber = v
	}
}

func (d *DeviceInfo) SetDeviceURLIfEmpty(v string) {
	if v == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deviceURL == "" {
		d.deviceURL = v
	}
}

// SetDeviceCategory overwrites the category. Only the classifier stage
// should call this.
func (d *DeviceInfo) SetDeviceCategory(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deviceCategory = v
}

// AddDeviceTags merges tags into the ordered tag set, preserving first-seen
// order and ignoring duplicates.
func (d *DeviceInfo) AddDeviceTags(tags ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tagSet == nil {
		d.tagSet = make(map[string]struct{})
	}
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := d.tagSet[t]; ok {
			continue
		}
		d.tagSet[t] = struct{}{}
		d.deviceTags = append(d.deviceTags, t)
	}
}

func (d *DeviceInfo) SetOSGuessIfEmpty(v string) {
	if v == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.osGuess == "" {
		d.osGuess = v
	}
}

// AddService appends a service entry discovered during banner grabbing.
func (d *DeviceInfo) AddService(s ServiceEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.services = append(d.services, s)
}

// SetBanner records the truncated banner text observed on a given port.
func (d *DeviceInfo) SetBanner(portKey, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.banners == nil {
		d.banners = make(map[string]string)
	}
	d.banners[portKey] = text
}

// AddEnrichmentError records a stage failure without halting the pipeline.
func (d *DeviceInfo) AddEnrichmentError(stage string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enrichmentErrors = append(d.enrichmentErrors, stage+": "+err.Error())
}

// Fingerprint is the serialized subset of DeviceInfo attached back onto a
// raw protocol record once enrichment completes.
type Fingerprint struct {
	Manufacturer    string            `json:"manufacturer,omitempty"`
	Model           string            `json:"model,omitempty"`
	FirmwareVersion string            `json:"firmware_version,omitempty"`
	SerialNumber    string            `json:"serial_number,omitempty"`
	DeviceURL       string            `json:"device_url,omitempty"`
	DeviceCategory  string            `json:"device_category"`
	DeviceTags      []string          `json:"device_tags,omitempty"`
	OSGuess         string            `json:"os_guess,omitempty"`
	Services        []ServiceEntry    `json:"services,omitempty"`
	Banners         map[string]string `json:"banners,omitempty"`
}

// ToFingerprint snapshots the enrichable subset of a DeviceInfo.
func (d *DeviceInfo) ToFingerprint() *Fingerprint {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fp := &Fingerprint{
		Manufacturer:    d.manufacturer,
		Model:           d.model,
		FirmwareVersion: d.firmwareVersion,
		SerialNumber:    d.serialNumber,
		DeviceURL:       d.deviceURL,
		DeviceCategory:  d.deviceCategory,
		DeviceTags:      append([]string(nil), d.deviceTags...),
		OSGuess:         d.osGuess,
		Services:        append([]ServiceEntry(nil), d.services...),
		Banners:         make(map[string]string, len(d.banners)),
	}
	for k, v := range d.banners {
		fp.Banners[k] = v
	}
	return fp
}

// MarshalJSON customizes the JSON encoding of DeviceInfo with thread-safe access.
func (d *DeviceInfo) MarshalJSON() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	type temp struct {
		Protocol         string            `json:"protocol"`
		Address          string            `json:"address"`
		Port             int               `json:"port"`
		RawData          map[string]string `json:"raw_data,omitempty"`
		FriendlyName     string            `json:"friendly_name,omitempty"`
		Manufacturer     string            `json:"manufacturer,omitempty"`
		Model            string            `json:"model,omitempty"`
		FirmwareVersion  string            `json:"firmware_version,omitempty"`
		SerialNumber     string            `json:"serial_number,omitempty"`
		DeviceURL        string            `json:"device_url,omitempty"`
		DeviceCategory   string            `json:"device_category"`
		DeviceTags       []string          `json:"device_tags,omitempty"`
		OSGuess          string            `json:"os_guess,omitempty"`
		Services         []ServiceEntry    `json:"services,omitempty"`
		Banners          map[string]string `json:"banners,omitempty"`
		EnrichmentErrors []string          `json:"enrichment_errors,omitempty"`
	}

	t := temp{
		Protocol:         d.protocol,
		Address:          d.address,
		Port:             d.port,
		RawData:          d.rawData,
		FriendlyName:     d.friendlyName,
		Manufacturer:     d.manufacturer,
		Model:            d.model,
		FirmwareVersion:  d.firmwareVersion,
		SerialNumber:     d.serialNumber,
		DeviceURL:        d.deviceURL,
		DeviceCategory:   d.deviceCategory,
		DeviceTags:       d.deviceTags,
		OSGuess:          d.osGuess,
		Services:         d.services,
		Banners:          d.banners,
		EnrichmentErrors: d.enrichmentErrors,
	}

	return json.Marshal(t)
}
