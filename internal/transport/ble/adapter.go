package ble

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"tinygo.org/x/bluetooth"

	"github.com/taoyao-code/rf320-bridge/internal/transport"
)

// BLE 传输适配器：扫描目标设备，解析写/通知两个 GATT 特征后
// 对上层只暴露 transport.Transport。引擎看不到任何 GATT 细节。

var (
	// ErrDeviceNotFound 扫描窗口内未发现目标设备
	ErrDeviceNotFound = errors.New("device not found")
	// ErrCharMissing 必需的写/通知特征缺失
	ErrCharMissing = errors.New("required characteristic missing")
)

// Config BLE 目标参数。Address 与 Name 二选一匹配。
type Config struct {
	Address     string
	Name        string
	ServiceUUID string
	WriteUUID   string
	NotifyUUID  string
	ScanTimeout time.Duration
}

// Adapter 实现 transport.Transport
type Adapter struct {
	cfg    Config
	logger *zap.Logger

	adapter   *bluetooth.Adapter
	device    bluetooth.Device
	writeChar bluetooth.DeviceCharacteristic

	notify func([]byte)
	sigC   chan transport.Signal
	closed int32
}

// New 创建 BLE 传输
func New(cfg Config, logger *zap.Logger) *Adapter {
	if cfg.ScanTimeout <= 0 {
		cfg.ScanTimeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		cfg:     cfg,
		logger:  logger,
		adapter: bluetooth.DefaultAdapter,
		sigC:    make(chan transport.Signal, 8),
	}
}

// SetNotifyHandler 安装通知回调，必须在 Connect 前调用
func (a *Adapter) SetNotifyHandler(fn func(data []byte)) { a.notify = fn }

// Signals 生命周期信号流
func (a *Adapter) Signals() <-chan transport.Signal { return a.sigC }

// Connect 扫描、连接并解析特征。能力解析结果通过信号上报。
func (a *Adapter) Connect(ctx context.Context) error {
	if err := a.adapter.Enable(); err != nil {
		return err
	}

	result, err := a.scan(ctx)
	if err != nil {
		return err
	}

	// 远端断链（设备关机/走出范围）只能从协议栈的连接事件得知，
	// 必须在发起连接前装好回调，避免漏掉事件
	target := result.Address.String()
	a.adapter.SetConnectHandler(func(dev bluetooth.Device, connected bool) {
		if connected || !strings.EqualFold(dev.Address.String(), target) {
			return
		}
		a.onLinkDown()
	})

	dev, err := a.adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return err
	}
	a.device = dev
	a.emit(transport.Signal{Kind: transport.SignalConnected})

	if err := a.resolveCharacteristics(); err != nil {
		a.emit(transport.Signal{Kind: transport.SignalCapabilityFailure, Err: err})
		return nil // 连接已建立，能力失败走信号而非错误返回
	}
	a.emit(transport.Signal{Kind: transport.SignalCapabilitiesResolved})
	return nil
}

func (a *Adapter) scan(ctx context.Context) (bluetooth.ScanResult, error) {
	var found bluetooth.ScanResult
	var matched bool
	scanCtx, cancel := context.WithTimeout(ctx, a.cfg.ScanTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- a.adapter.Scan(func(ad *bluetooth.Adapter, res bluetooth.ScanResult) {
			if a.match(res) {
				found = res
				matched = true
				_ = ad.StopScan()
			}
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			return found, err
		}
	case <-scanCtx.Done():
		_ = a.adapter.StopScan()
		<-done
	}
	if !matched {
		return found, ErrDeviceNotFound
	}
	a.logger.Info("device found",
		zap.String("address", found.Address.String()),
		zap.String("name", found.LocalName()))
	return found, nil
}

func (a *Adapter) match(res bluetooth.ScanResult) bool {
	if a.cfg.Address != "" && strings.EqualFold(res.Address.String(), a.cfg.Address) {
		return true
	}
	return a.cfg.Name != "" && res.LocalName() == a.cfg.Name
}

func (a *Adapter) resolveCharacteristics() error {
	svcUUID, err := bluetooth.ParseUUID(a.cfg.ServiceUUID)
	if err != nil {
		return err
	}
	writeUUID, err := bluetooth.ParseUUID(a.cfg.WriteUUID)
	if err != nil {
		return err
	}
	notifyUUID, err := bluetooth.ParseUUID(a.cfg.NotifyUUID)
	if err != nil {
		return err
	}

	svcs, err := a.device.DiscoverServices([]bluetooth.UUID{svcUUID})
	if err != nil || len(svcs) == 0 {
		return ErrCharMissing
	}
	chars, err := svcs[0].DiscoverCharacteristics([]bluetooth.UUID{writeUUID, notifyUUID})
	if err != nil {
		return ErrCharMissing
	}

	var haveWrite, haveNotify bool
	for _, ch := range chars {
		switch ch.UUID() {
		case writeUUID:
			a.writeChar = ch
			haveWrite = true
		case notifyUUID:
			err := ch.EnableNotifications(func(buf []byte) {
				// BLE 通知天然按消息分界，直接透传
				if a.notify != nil {
					dup := make([]byte, len(buf))
					copy(dup, buf)
					a.notify(dup)
				}
			})
			if err != nil {
				return err
			}
			haveNotify = true
		}
	}
	if !haveWrite || !haveNotify {
		return ErrCharMissing
	}
	return nil
}

// Write 写下行帧。失败直接上报，不重试。
func (a *Adapter) Write(_ context.Context, p []byte) error {
	if atomic.LoadInt32(&a.closed) == 1 {
		return errors.New("transport closed")
	}
	_, err := a.writeChar.WriteWithoutResponse(p)
	return err
}

// onLinkDown 协议栈报告远端断链。本地 Close 已置 closed 标记，
// 其后的断链事件不再重复发信号。
func (a *Adapter) onLinkDown() {
	if atomic.LoadInt32(&a.closed) == 1 {
		return
	}
	a.logger.Warn("ble link lost")
	a.emit(transport.Signal{Kind: transport.SignalDisconnected})
}

// Close 断开连接
func (a *Adapter) Close() error {
	if !atomic.CompareAndSwapInt32(&a.closed, 0, 1) {
		return nil
	}
	err := a.device.Disconnect()
	a.emit(transport.Signal{Kind: transport.SignalDisconnected})
	return err
}

func (a *Adapter) emit(sig transport.Signal) {
	select {
	case a.sigC <- sig:
	default:
		a.logger.Warn("lifecycle signal dropped", zap.Int("kind", int(sig.Kind)))
	}
}
