// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package video 将一次视频生成请求路由到某个第三方生成后端并返回结果 URL。

# 概述

Dispatcher 按模型名在静态 Registry 中查找路由，每次调用恰好创建一个远端任务，
不缓存、不去重、不重试、不回退。

# 后端

  - 异步后端（AsyncProvider）：Sora、Runway、Luma、Vidu。Submit 创建任务，
    Poller 按固定间隔调用 Poll 直到终态，再由 ExtractResult 取出视频 URL。
  - 同步后端（SyncProvider）：Replicate 托管的 Kling、Pika 与 Flux 图像模型，
    使用 Prefer: wait 在一次请求内拿到输出。
  - Pipeline：Flux 出图后交给 SVD 生成视频，两个阶段顺序执行。

# 失败分类

所有失败都以 *types.Error 返回，错误码取自 types 包的生成错误码，
types.DisplayMessage 给出可直接展示的一行文字。
*/
package video
