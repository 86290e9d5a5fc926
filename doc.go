// Package hmsservices 提供 hms_services 插件的方法通道实现
//
// 宿主应用通过一个命名的方法通道向插件发送调用，插件按方法名分发，
// 每次调用恰好得到一个回复：成功结果、错误，或者“未实现”。
//
// 进程内使用:
//
//	messenger := hmsservices.NewLocalMessenger(nil)
//	registrar := hmsservices.NewPluginRegistrar(messenger, nil, nil)
//
//	plugin := hmsservices.NewPlugin()
//	if err := plugin.Register(registrar); err != nil {
//		log.Fatal(err)
//	}
//
//	channel := hmsservices.NewMethodChannel(hmsservices.ChannelName, messenger, nil, nil)
//	version, err := channel.InvokeMethod(ctx, "getPlatformVersion", nil)
//
// 跨进程使用:
//
//	// 插件端
//	server, _ := hmsservices.NewChannelServer(hmsservices.DefaultServerConfig(), nil, nil)
//	registrar := hmsservices.NewPluginRegistrar(server.Messenger(), nil, nil)
//	hmsservices.NewPlugin().Register(registrar)
//	server.Start()
//	server.Wait()
//
//	// 宿主端
//	client, _ := hmsservices.NewChannelClient(hmsservices.DefaultClientConfig(), nil)
//	channel := hmsservices.NewMethodChannel(hmsservices.ChannelName, client, nil, nil)
//	version, err := channel.InvokeMethod(ctx, "getPlatformVersion", nil)
//
// 未实现的方法:
//
//	_, err := channel.InvokeMethod(ctx, "unknownMethod", nil)
//	if errors.Is(err, hmsservices.ErrNotImplemented) {
//		// 当前平台不支持该能力
//	}
package hmsservices

// Version 库版本号
// 遵循语义化版本规范 (Semantic Versioning)
const Version = "1.0.0"
